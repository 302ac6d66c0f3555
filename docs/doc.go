// Package docs provides generated OpenAPI documentation.
//
// Langsheet API
//
//	@title			Langsheet API
//	@version		1.0
//	@description	Session API for turning per-language rules spreadsheets into JSON bundles: load sheets, map segment headers to keys, preview and export.
//	@termsOfService	http://swagger.io/terms/
//
//	@contact.name	API Support
//	@contact.url	https://github.com/jackzampolin/langsheet
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/langsheet/serve.go -o ./swagger --parseDependency --parseInternal
