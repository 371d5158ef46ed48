package companies

// CompanyForm is the payload for creating or updating a company.
type CompanyForm struct {
	Code  string `json:"code" validate:"required,max=32"`
	Name  string `json:"name" validate:"required,max=255"`
	TaxID string `json:"tax_id" validate:"max=32"`
}

// CostCenterForm is the payload for creating a cost center.
type CostCenterForm struct {
	Code string `json:"code" validate:"required,max=32"`
	Name string `json:"name" validate:"required,max=255"`
}
