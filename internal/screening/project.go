// Package screening projects the unified exports into typed records, applies
// the status filters and attributes every row to a warehouse.
package screening

import (
	"time"

	"github.com/andresuchdata/warehouse-recon/internal/records"
	"github.com/andresuchdata/warehouse-recon/internal/source"
	"github.com/andresuchdata/warehouse-recon/internal/unify"
)

const (
	activeStockStatus = "01"
	dispatchClass     = "TR01"
)

var (
	// Dispatch headers in these states are excluded.
	voidedOrDelivered = map[string]bool{"9": true, "5": true}
	// Stock states that count as dispatched.
	dispatchedStatuses = map[string]bool{"XX": true, "03": true}
	// Obsolete temporary dispatch locations.
	blockedLocations = map[string]bool{
		"DT1H2": true, "DT1I3": true, "DT1J3": true, "DT2C2": true, "DT2G3": true,
		"DT2H1": true, "DT3D1": true, "DT3E1": true, "DT3E2": true, "DT3I1": true,
	}
	// Internal and test client ids.
	blockedClients = map[string]bool{"000099": true, "AC0001": true}
	blockedCenters = map[string]bool{"002": true}
)

// Tables is the projected, filtered and sorted record set.
type Tables struct {
	Stock           []records.StockRow
	DispatchedStock []records.StockRow
	UnfilteredStock []records.StockRow
	ProductLines    []records.ProductLine
	DispatchHeaders []records.DispatchHeader
	Movements       []records.Movement
	Receipts        []records.Receipt
	ReceiptPreviews []records.ReceiptPreview
	Ledger          []records.LedgerEntry
	Clients         []records.Client
	Centers         []records.Center
	ProductModels   []records.ProductModel
}

// Project narrows the unified tables to typed records, drops inactive,
// voided and blocked rows, normalizes dates and sorts dated tables most
// recent first.
func Project(u *unify.Unified) *Tables {
	t := &Tables{}

	for _, r := range stockRows(u.Table(source.RoleStock)) {
		if r.IDStatus == activeStockStatus {
			t.Stock = append(t.Stock, r)
		}
	}
	for _, r := range stockRows(u.DispatchedStock) {
		if dispatchedStatuses[r.IDStatus] && !blockedLocations[r.IDUbica] {
			t.DispatchedStock = append(t.DispatchedStock, r)
		}
	}
	for _, r := range stockRows(u.UnfilteredStock) {
		if dispatchedStatuses[r.IDStatus] && blockedLocations[r.IDUbica] {
			continue
		}
		t.UnfilteredStock = append(t.UnfilteredStock, r)
	}

	t.ProductLines = productLines(u.Table(source.RoleProductLines))
	for _, r := range dispatchHeaders(u.Table(source.RoleDispatchHeaders)) {
		if !voidedOrDelivered[r.Estatus] {
			t.DispatchHeaders = append(t.DispatchHeaders, r)
		}
	}
	for _, r := range movements(u.Table(source.RoleMovements)) {
		if r.IDClase == dispatchClass {
			t.Movements = append(t.Movements, r)
		}
	}
	for _, r := range ledgerEntries(u.Table(source.RoleLedger)) {
		if r.IDClase == dispatchClass {
			t.Ledger = append(t.Ledger, r)
		}
	}
	t.Receipts = receipts(u.Table(source.RoleReceipts))
	t.ReceiptPreviews = receiptPreviews(u.Table(source.RoleReceiptPreviews))

	for _, c := range clients(u.Table(source.RoleClients)) {
		if !blockedClients[c.IDContacto] {
			t.Clients = append(t.Clients, c)
		}
	}
	for _, c := range centers(u.Table(source.RoleCenters)) {
		if !blockedCenters[c.IDCentro] {
			t.Centers = append(t.Centers, c)
		}
	}
	t.ProductModels = productModels(u.Table(source.RoleProductModels))

	stockDate := func(r records.StockRow) time.Time { return r.Fecha }
	t.Stock = records.SortByDateDesc(t.Stock, stockDate)
	t.DispatchedStock = records.SortByDateDesc(t.DispatchedStock, stockDate)
	t.Movements = records.SortByDateDesc(t.Movements, func(r records.Movement) time.Time { return r.Fecha })
	t.Receipts = records.SortByDateDesc(t.Receipts, func(r records.Receipt) time.Time { return r.Fecha })
	t.ReceiptPreviews = records.SortByDateDesc(t.ReceiptPreviews, func(r records.ReceiptPreview) time.Time { return r.Fecha })
	t.Ledger = records.SortByDateDesc(t.Ledger, func(r records.LedgerEntry) time.Time { return r.Fecha })
	t.DispatchHeaders = records.SortByDateDesc(t.DispatchHeaders, func(r records.DispatchHeader) time.Time { return r.Fecha })
	return t
}

// reader resolves column positions once per table.
type reader struct {
	t   *source.Table
	idx map[string]int
}

func newReader(t *source.Table, cols ...string) *reader {
	r := &reader{t: t, idx: make(map[string]int, len(cols))}
	for _, c := range cols {
		r.idx[c] = t.Col(c)
	}
	return r
}

func (r *reader) str(row []string, col string) string { return source.Get(row, r.idx[col]) }
func (r *reader) date(row []string, col string) time.Time {
	return records.ParseDate(r.str(row, col))
}
func (r *reader) num(row []string, col string) float64 {
	return records.ParseNumber(r.str(row, col))
}

var stockColumns = []string{
	"idcentro", "idbodega", "idingreso", "itemno", "idstatus", "idmodelo", "idcoldis", "fecha", "modifica",
	"ingresa", "idcontacto", "retnum", "idubica", "pesokgs", "equipo", "inicial", "salidas", "idpedido",
	"idubica1", "idproducto",
}

func stockRows(t *source.Table) []records.StockRow {
	rd := newReader(t, stockColumns...)
	out := make([]records.StockRow, 0, t.Len())
	for _, row := range t.Rows {
		out = append(out, records.StockRow{
			IDCentro:   rd.str(row, "idcentro"),
			IDBodega:   rd.str(row, "idbodega"),
			IDIngreso:  rd.str(row, "idingreso"),
			ItemNo:     rd.str(row, "itemno"),
			IDStatus:   rd.str(row, "idstatus"),
			IDModelo:   rd.str(row, "idmodelo"),
			IDColDis:   rd.str(row, "idcoldis"),
			Fecha:      rd.date(row, "fecha"),
			Modifica:   rd.date(row, "modifica"),
			Ingresa:    rd.str(row, "ingresa"),
			IDContacto: rd.str(row, "idcontacto"),
			Retnum:     rd.str(row, "retnum"),
			IDUbica:    rd.str(row, "idubica"),
			IDUbica1:   rd.str(row, "idubica1"),
			IDProducto: rd.str(row, "idproducto"),
			IDPedido:   rd.str(row, "idpedido"),
			Equipo:     rd.str(row, "equipo"),
			PesoKgs:    rd.num(row, "pesokgs"),
			Inicial:    rd.num(row, "inicial"),
			Salidas:    rd.num(row, "salidas"),
		})
	}
	return out
}

func productLines(t *source.Table) []records.ProductLine {
	rd := newReader(t, "numero", "itemline", "estatus", "idproducto", "idcontacto", "idmodelo", "idcoldis",
		"idubica", "cantidad", "equipo", "idubica1", "idingreso", "ingresa")
	out := make([]records.ProductLine, 0, t.Len())
	for _, row := range t.Rows {
		l := records.ProductLine{
			Numero:     rd.str(row, "numero"),
			ItemLine:   rd.str(row, "itemline"),
			Estatus:    rd.str(row, "estatus"),
			IDProducto: rd.str(row, "idproducto"),
			IDContacto: rd.str(row, "idcontacto"),
			IDModelo:   rd.str(row, "idmodelo"),
			IDColDis:   rd.str(row, "idcoldis"),
			IDUbica:    rd.str(row, "idubica"),
			IDUbica1:   rd.str(row, "idubica1"),
			IDIngreso:  rd.str(row, "idingreso"),
			Ingresa:    rd.str(row, "ingresa"),
			Equipo:     rd.str(row, "equipo"),
			Cantidad:   rd.num(row, "cantidad"),
		}
		if l.IDUbica == "" {
			l.IDUbica = unknownLocation
		}
		if l.IDUbica1 == "" {
			l.IDUbica1 = unknownLocation
		}
		out = append(out, l)
	}
	return out
}

func dispatchHeaders(t *source.Table) []records.DispatchHeader {
	rd := newReader(t, "numero", "estatus", "tipo", "fecha", "idcentro", "idcentro1", "descrip", "itemcount",
		"pzascan", "trannum", "equipo")
	out := make([]records.DispatchHeader, 0, t.Len())
	for _, row := range t.Rows {
		out = append(out, records.DispatchHeader{
			Numero:    rd.str(row, "numero"),
			Estatus:   rd.str(row, "estatus"),
			Tipo:      rd.str(row, "tipo"),
			Fecha:     rd.date(row, "fecha"),
			IDCentro:  rd.str(row, "idcentro"),
			IDCentro1: rd.str(row, "idcentro1"),
			Descrip:   rd.str(row, "descrip"),
			ItemCount: rd.str(row, "itemcount"),
			PzaScan:   rd.str(row, "pzascan"),
			Trannum:   rd.str(row, "trannum"),
			Equipo:    rd.str(row, "equipo"),
		})
	}
	return out
}

func movements(t *source.Table) []records.Movement {
	rd := newReader(t, "trannum", "lineano", "fecha", "cantidad", "idmodelo", "idcoldis", "idingreso", "itemno",
		"idcontacto", "equipo", "idcentro", "idcentro1", "idclase", "numero")
	out := make([]records.Movement, 0, t.Len())
	for _, row := range t.Rows {
		out = append(out, records.Movement{
			Trannum:    rd.str(row, "trannum"),
			LineaNo:    rd.str(row, "lineano"),
			Fecha:      rd.date(row, "fecha"),
			Cantidad:   rd.num(row, "cantidad"),
			IDModelo:   rd.str(row, "idmodelo"),
			IDColDis:   rd.str(row, "idcoldis"),
			IDIngreso:  rd.str(row, "idingreso"),
			ItemNo:     rd.str(row, "itemno"),
			IDContacto: rd.str(row, "idcontacto"),
			Equipo:     rd.str(row, "equipo"),
			IDCentro:   rd.str(row, "idcentro"),
			IDCentro1:  rd.str(row, "idcentro1"),
			IDClase:    rd.str(row, "idclase"),
			Numero:     rd.str(row, "numero"),
		})
	}
	return out
}

func receipts(t *source.Table) []records.Receipt {
	rd := newReader(t, "idingreso", "fecha", "items", "transtatus", "descrip", "available", "equipo",
		"idcontacto", "retnum")
	out := make([]records.Receipt, 0, t.Len())
	for _, row := range t.Rows {
		out = append(out, records.Receipt{
			IDIngreso:  rd.str(row, "idingreso"),
			Fecha:      rd.date(row, "fecha"),
			Items:      rd.str(row, "items"),
			TranStatus: rd.str(row, "transtatus"),
			Descrip:    rd.str(row, "descrip"),
			Available:  rd.str(row, "available"),
			Equipo:     rd.str(row, "equipo"),
			IDContacto: rd.str(row, "idcontacto"),
			Retnum:     rd.str(row, "retnum"),
		})
	}
	return out
}

func receiptPreviews(t *source.Table) []records.ReceiptPreview {
	rd := newReader(t, "idcoclase", "numero", "itemcount", "itemqty", "fecha", "idcontacto", "descrip",
		"idcostatus", "retnum", "equipo")
	out := make([]records.ReceiptPreview, 0, t.Len())
	for _, row := range t.Rows {
		out = append(out, records.ReceiptPreview{
			IDCoClase:  rd.str(row, "idcoclase"),
			Numero:     rd.str(row, "numero"),
			ItemCount:  rd.str(row, "itemcount"),
			ItemQty:    rd.str(row, "itemqty"),
			Fecha:      rd.date(row, "fecha"),
			IDContacto: rd.str(row, "idcontacto"),
			Descrip:    rd.str(row, "descrip"),
			IDCoStatus: rd.str(row, "idcostatus"),
			Retnum:     rd.str(row, "retnum"),
			Equipo:     rd.str(row, "equipo"),
		})
	}
	return out
}

func ledgerEntries(t *source.Table) []records.LedgerEntry {
	rd := newReader(t, "idbodega", "idclase", "numero", "fecha", "idcontacto", "referencia", "transtatus",
		"descrip", "trannum", "linead", "lineac", "idcliente", "equipo", "idcentro", "idcentro1")
	out := make([]records.LedgerEntry, 0, t.Len())
	for _, row := range t.Rows {
		out = append(out, records.LedgerEntry{
			IDBodega:   rd.str(row, "idbodega"),
			IDClase:    rd.str(row, "idclase"),
			Numero:     rd.str(row, "numero"),
			Fecha:      rd.date(row, "fecha"),
			IDContacto: rd.str(row, "idcontacto"),
			Referencia: rd.str(row, "referencia"),
			TranStatus: rd.str(row, "transtatus"),
			Descrip:    rd.str(row, "descrip"),
			Trannum:    rd.str(row, "trannum"),
			LineaD:     rd.str(row, "linead"),
			LineaC:     rd.str(row, "lineac"),
			IDCliente:  rd.str(row, "idcliente"),
			Equipo:     rd.str(row, "equipo"),
			IDCentro:   rd.str(row, "idcentro"),
			IDCentro1:  rd.str(row, "idcentro1"),
		})
	}
	return out
}

func clients(t *source.Table) []records.Client {
	rd := newReader(t, "idcontacto", "descrip")
	out := make([]records.Client, 0, t.Len())
	for _, row := range t.Rows {
		out = append(out, records.Client{IDContacto: rd.str(row, "idcontacto"), Name: rd.str(row, "descrip")})
	}
	return out
}

func centers(t *source.Table) []records.Center {
	rd := newReader(t, "idcentro", "descrip")
	out := make([]records.Center, 0, t.Len())
	for _, row := range t.Rows {
		out = append(out, records.Center{IDCentro: rd.str(row, "idcentro"), Descrip: rd.str(row, "descrip")})
	}
	return out
}

func productModels(t *source.Table) []records.ProductModel {
	rd := newReader(t, "idmodelo", "descrip")
	out := make([]records.ProductModel, 0, t.Len())
	for _, row := range t.Rows {
		out = append(out, records.ProductModel{IDModelo: rd.str(row, "idmodelo"), Descrip: rd.str(row, "descrip")})
	}
	return out
}
