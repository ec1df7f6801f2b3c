package main

// @title USDT Vault API
// @version 1.0
// @description Personal finance dashboard for a BEP20 USDT wallet: ledger, savings goals, investment plans and read-only chain views.

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	Execute()
}
