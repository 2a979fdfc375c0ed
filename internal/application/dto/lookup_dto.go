package dto

// AddressLookupResponse resultado de la consulta de CEP.
type AddressLookupResponse struct {
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// CompanyLookupResponse resultado de la consulta de CNPJ.
type CompanyLookupResponse struct {
	CNPJ    string `json:"cnpj"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// PersonLookupResponse resultado de la consulta de CPF.
type PersonLookupResponse struct {
	CPF       string `json:"cpf"`
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
}

// RetryNotificationsResponse entradas del outbox republicadas.
type RetryNotificationsResponse struct {
	Published int `json:"published"`
}
