// Package docs Scoutscape API.
//
// Разведка шумовых рисков вокруг точки в Ванкувере: объекты OpenStreetMap
// (больницы, стройки, школы, транспорт), погода, трафик и журнал анализов.
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package docs
