package export

import (
	"github.com/andresuchdata/warehouse-recon/internal/kpi"
	"github.com/andresuchdata/warehouse-recon/internal/pipeline"
	"github.com/andresuchdata/warehouse-recon/internal/summary"
)

// Reports flattens a run result into its report tables, in workbook order.
func Reports(res *pipeline.Result) []*Table {
	out := []*Table{
		monthly("receptions_summary", res.ReceptionSummary),
		monthly("dispatches_summary", res.DispatchSummary),
		byWarehouse("inflow_by_warehouse", res.InByWarehouse),
		byWarehouse("outflow_by_warehouse", res.OutByWarehouse),
	}

	t := newTable("receptions_fact",
		"idingreso", "itemno", "fecha", "descrip", "idcontacto", "retnum", "idmodelo", "idcoldis", "modifica",
		"receipt_location", "stock_location", "line_location", "receipt_bodega", "line_bodega",
		"pesokgs", "inicial", "salidas", "ddma", "bodega")
	for _, f := range res.ReceptionFact {
		t.add(f.IDIngreso, f.ItemNo, f.Fecha, f.Descrip, f.IDContacto, f.Retnum, f.IDModelo, f.IDColDis, f.Modifica,
			f.ReceiptLocation, f.StockLocation, f.LineLocation, f.ReceiptBodega, f.LineBodega,
			f.PesoKgs, f.Inicial, f.Salidas, f.DDMA, f.Bodega)
	}
	out = append(out, t)

	t = newTable("dispatches_fact",
		"trannum", "numero", "idingreso", "itemno", "idmodelo", "idcontacto", "fecha", "arrival_date",
		"cantidad", "pesokgs", "stock_location", "matched", "bodega")
	for _, f := range res.DispatchFact {
		t.add(f.Trannum, f.Numero, f.IDIngreso, f.ItemNo, f.IDModelo, f.IDContacto, f.Fecha, f.ArrivalDate,
			f.Cantidad, f.PesoKgs, f.StockLocation, f.Matched, f.Bodega)
	}
	out = append(out, t)

	t = newTable("receipt_previews",
		"idcoclase", "numero", "itemcount", "itemqty", "fecha", "idcontacto", "descrip", "idcostatus", "retnum", "equipo")
	for _, r := range res.ReceiptPreviews {
		t.add(r.IDCoClase, r.Numero, r.ItemCount, r.ItemQty, r.Fecha, r.IDContacto, r.Descrip, r.IDCoStatus, r.Retnum, r.Equipo)
	}
	out = append(out, t)

	t = newTable("capacity_fact",
		"idingreso", "itemno", "idmodelo", "idcoldis", "fecha", "idcontacto", "idubica", "idubica1", "pesokgs", "inicial", "bodega")
	for _, r := range res.Capacity.Fact {
		t.add(r.IDIngreso, r.ItemNo, r.IDModelo, r.IDColDis, r.Fecha, r.IDContacto, r.IDUbica, r.IDUbica1, r.PesoKgs, r.Inicial, r.Bodega)
	}
	out = append(out, t)

	t = newTable("capacity_summary", "bodega", "idcontacto", "cbm", "pallets", "units")
	for _, s := range res.Capacity.Summary {
		t.add(s.Warehouse, s.IDContacto, s.CBM, s.Pallets, s.Units)
	}
	out = append(out, t)

	t = newTable("product_proportions", "idmodelo", "idcoldis", "cbm", "units", "pallets", "cbm_pct", "pallets_pct", "units_pct")
	for _, s := range res.Proportions {
		t.add(s.ProductID, s.ModelID, s.CBM, s.Units, s.Pallets, s.CBMPct, s.PalletsPct, s.UnitsPct)
	}
	out = append(out, t)

	t = newTable("oldest_products", "fecha", "days_in_inventory", "idmodelo", "idcoldis", "cbm", "units", "pallets", "cbm_pct", "pallets_pct", "units_pct")
	for _, a := range res.Oldest {
		t.add(a.Date, a.DaysInInventory, a.ProductID, a.ModelID, a.CBM, a.Units, a.Pallets, a.CBMPct, a.PalletsPct, a.UnitsPct)
	}
	out = append(out, t)

	t = newTable("billing_inflow", "idingreso", "idmodelo", "fecha", "descrip", "idcontacto", "cbm", "units", "pallets", "mode_count", "splits", "bodega")
	for _, r := range res.Billing.Inflow {
		t.add(r.IDIngreso, r.IDModelo, r.Date, r.Description, r.IDContacto, r.CBM, r.Units, r.Pallets, r.ModeCount, r.Splits, r.Warehouse)
	}
	out = append(out, t)

	t = newTable("billing_outflow", "trannum", "idmodelo", "arrival_date", "shipping_date", "days", "descrip", "idcontacto", "client", "cbm", "pallets", "units", "mode_count", "bodega")
	for _, r := range res.Billing.Outflow {
		t.add(r.Trannum, r.IDModelo, r.ArrivalDate, r.ShippingDate, r.Days, r.Description, r.IDContacto, r.Client, r.CBM, r.Pallets, r.Units, r.ModeCount, r.Warehouse)
	}
	out = append(out, t)

	t = newTable("current_inventory", "idingreso", "itemno", "dup_key", "fecha", "days", "idcontacto", "location_id", "cbm", "units", "pallets", "bodega")
	for _, r := range res.Billing.Current {
		t.add(r.IDIngreso, r.ItemNo, r.DupKey, r.Date, r.Days, r.IDContacto, r.LocationID, r.CBM, r.Units, r.Pallets, r.Warehouse)
	}
	out = append(out, t)

	t = newTable("inventory_daily", "fecha", "idcontacto", "inflow", "outflow", "units_in", "units_out", "pallets_in", "pallets_out",
		"opening", "level", "units_level", "pallets_level", "clamped")
	for _, d := range res.Days {
		t.add(d.Date, d.Client, d.Inflow, d.Outflow, d.UnitsIn, d.UnitsOut, d.PalletsIn, d.PalletsOut,
			d.Opening, d.Level, d.UnitsLevel, d.PalletsLevel, d.Clamped)
	}
	out = append(out, t)

	t = newTable("inventory_totals", "fecha", "inflow", "outflow", "units_in", "units_out", "pallets_in", "pallets_out",
		"opening", "level", "units_level", "pallets_level")
	for _, d := range res.Totals {
		t.add(d.Date, d.Inflow, d.Outflow, d.UnitsIn, d.UnitsOut, d.PalletsIn, d.PalletsOut, d.Opening, d.Level, d.UnitsLevel, d.PalletsLevel)
	}
	out = append(out, t)

	t = newTable("inventory_monthly", "month", "inflow", "outflow", "units_in", "units_out", "pallets_in", "pallets_out", "initial", "final", "days")
	for _, m := range res.Monthly {
		t.add(m.Month.Format(kpi.MonthLayout), m.Inflow, m.Outflow, m.UnitsIn, m.UnitsOut, m.PalletsIn, m.PalletsOut, m.Initial, m.Final, m.Days)
	}
	out = append(out, t)

	t = newTable("client_share", "idcontacto", "inflow", "inflow_pct", "outflow", "outflow_pct")
	for _, s := range res.Shares {
		t.add(s.Client, s.Inflow, s.InflowPct, s.Outflow, s.OutflowPct)
	}
	out = append(out, t)

	t = newTable("kpi", "month", "inflow", "outflow", "level", "average_inventory", "turnover", "days_on_hand",
		"inflow_mom_pct", "outflow_mom_pct", "level_mom_pct")
	for _, r := range res.KPI {
		t.add(r.Month, r.Inflow, r.Outflow, r.Level, r.AverageInventory, r.Turnover, r.DaysOnHand, r.InflowMoM, r.OutflowMoM, r.LevelMoM)
	}
	return append(out, t)
}

func monthly(name string, rows []summary.Monthly) *Table {
	t := newTable(name, "month", "bodega", "client", "idcontacto", "fecha", "pallets", "units", "cbm", "ddma")
	for _, m := range rows {
		t.add(m.Month.Format(kpi.MonthLayout), m.Warehouse, m.Client, m.IDContacto, m.Date, m.Pallets, m.Units, m.CBM, m.PostPeriodRelease)
	}
	return t
}

func byWarehouse(name string, rows []summary.WarehouseTotal) *Table {
	t := newTable(name, "bodega", "cbm", "pallets", "units")
	for _, w := range rows {
		t.add(w.Warehouse, w.CBM, w.Pallets, w.Units)
	}
	return t
}
