// @title Vehicle Accounting API
// @version 1.0
// @description Internal fleet management console: vehicles, brands, enterprises.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token for authentication. Format: 'Bearer <token>'
package main

import (
	"github.com/mileoa/vehicle-accounting/internal/api"

	_ "github.com/mileoa/vehicle-accounting/docs"
)

func main() {
	api.StartServer()
}
