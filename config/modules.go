package config

// Module identifies one warehouse document module. Every module runs on the
// same document engine; only the code and the route path differ.
type Module struct {
	Code string
	Path string
}

var Modules = []Module{
	{Code: "GR", Path: "goods-receipt"},
	{Code: "WT", Path: "warehouse-transfer"},
	{Code: "PR", Path: "production"},
	{Code: "SH", Path: "shipment"},
	{Code: "SC", Path: "subcontracting"},
	{Code: "IC", Path: "inventory-count"},
}
