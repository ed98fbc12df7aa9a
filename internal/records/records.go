// Package records defines the typed rows that flow between pipeline stages
// and the parsing helpers shared by them.
package records

import (
	"time"

	"github.com/andresuchdata/warehouse-recon/internal/warehouse"
)

// StockRow is one line of an inventory snapshot (insaldo and its copies).
type StockRow struct {
	IDCentro   string
	IDBodega   string
	IDIngreso  string
	ItemNo     string
	IDStatus   string
	IDModelo   string
	IDColDis   string
	Fecha      time.Time
	Modifica   time.Time
	Ingresa    string
	IDContacto string
	Retnum     string
	IDUbica    string
	IDUbica1   string
	IDProducto string
	IDPedido   string
	Equipo     string
	PesoKgs    float64
	Inicial    float64
	Salidas    float64
	Bodega     warehouse.Label
}

// DupKey identifies a snapshot line.
func (r StockRow) DupKey() string { return r.IDIngreso + r.ItemNo }

// ProductLine is a dispatch product line (rpsdt).
type ProductLine struct {
	Numero     string
	ItemLine   string
	Estatus    string
	IDProducto string
	IDContacto string
	IDModelo   string
	IDColDis   string
	IDUbica    string
	IDUbica1   string
	IDIngreso  string
	Ingresa    string
	Equipo     string
	Cantidad   float64
	Bodega     warehouse.Label
}

// DispatchHeader is a dispatch order header (rpshd).
type DispatchHeader struct {
	Numero    string
	Estatus   string
	Tipo      string
	Fecha     time.Time
	IDCentro  string
	IDCentro1 string
	Descrip   string
	ItemCount string
	PzaScan   string
	Trannum   string
	Equipo    string
}

// Movement is a movement ledger detail row (inmovid).
type Movement struct {
	Trannum    string
	LineaNo    string
	Fecha      time.Time
	Cantidad   float64
	IDModelo   string
	IDColDis   string
	IDIngreso  string
	ItemNo     string
	IDContacto string
	Equipo     string
	IDCentro   string
	IDCentro1  string
	IDClase    string
	Numero     string
	IDUbica    string
	Bodega     warehouse.Label
}

// Receipt is a receiving transaction (incompra).
type Receipt struct {
	IDIngreso  string
	Fecha      time.Time
	Items      string
	TranStatus string
	Descrip    string
	Available  string
	Equipo     string
	IDContacto string
	Retnum     string
	IDUbica    string
	Bodega     warehouse.Label
}

// ReceiptPreview is an announced receipt (cohd).
type ReceiptPreview struct {
	IDCoClase  string
	Numero     string
	ItemCount  string
	ItemQty    string
	Fecha      time.Time
	IDContacto string
	Descrip    string
	IDCoStatus string
	Retnum     string
	Equipo     string
}

// LedgerEntry is a movement ledger header (inmovih).
type LedgerEntry struct {
	IDBodega   string
	IDClase    string
	Numero     string
	Fecha      time.Time
	IDContacto string
	Referencia string
	TranStatus string
	Descrip    string
	Trannum    string
	LineaD     string
	LineaC     string
	IDCliente  string
	Equipo     string
	IDCentro   string
	IDCentro1  string
	IDUbica    string
	Bodega     warehouse.Label
}

// Client is a client dimension row (incontac).
type Client struct {
	IDContacto string
	Name       string
}

// Center is a distribution center dimension row (ctcentro).
type Center struct {
	IDCentro string
	Descrip  string
}

// ProductModel is a product model dimension row (inmodelo).
type ProductModel struct {
	IDModelo string
	Descrip  string
}
