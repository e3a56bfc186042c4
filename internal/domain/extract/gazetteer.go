package extract

// Place is a known destination
type Place struct {
	City    string
	Country string
}

// DefaultCities is the built-in city gazetteer
var DefaultCities = []Place{
	{"São Paulo", "Brasil"},
	{"Rio de Janeiro", "Brasil"},
	{"Salvador", "Brasil"},
	{"Brasília", "Brasil"},
	{"Belo Horizonte", "Brasil"},
	{"Fortaleza", "Brasil"},
	{"Porto Alegre", "Brasil"},
	{"Curitiba", "Brasil"},
	{"Recife", "Brasil"},
	{"Manaus", "Brasil"},
	{"Florianópolis", "Brasil"},
	{"Buenos Aires", "Argentina"},
	{"Santiago", "Chile"},
	{"Lima", "Peru"},
	{"Bogotá", "Colômbia"},
	{"Caracas", "Venezuela"},
	{"Montevideo", "Uruguai"},
	{"Montevidéu", "Uruguai"},
	{"Asunción", "Paraguai"},
	{"Assunção", "Paraguai"},
	{"La Paz", "Bolívia"},
	{"Quito", "Equador"},
	{"Paris", "França"},
	{"Londres", "Reino Unido"},
	{"Nova York", "Estados Unidos"},
	{"Nova Iorque", "Estados Unidos"},
	{"Miami", "Estados Unidos"},
	{"Madrid", "Espanha"},
	{"Barcelona", "Espanha"},
	{"Lisboa", "Portugal"},
	{"Roma", "Itália"},
	{"Berlim", "Alemanha"},
	{"Cidade do México", "México"},
	{"Tokyo", "Japão"},
	{"Tóquio", "Japão"},
	{"Seoul", "Coreia do Sul"},
	{"Seul", "Coreia do Sul"},
}

// DefaultCountries are recognised when a message names a country but no known city
var DefaultCountries = []string{
	"Brasil",
	"Argentina",
	"Chile",
	"Peru",
	"Colômbia",
	"Venezuela",
	"Uruguai",
	"Paraguai",
	"Bolívia",
	"Equador",
	"França",
	"Reino Unido",
	"Inglaterra",
	"Estados Unidos",
	"Espanha",
	"Portugal",
	"Itália",
	"Alemanha",
	"México",
	"Canadá",
	"China",
	"Japão",
	"Coreia do Sul",
}
