package core

import (
	"time"
)

// OrderRecord is one canonical row of the otc_orders table.
//
// Optional text columns are pointers so an absent value reaches the database
// as NULL rather than an empty string. Solde is deliberately missing: the
// balance is computed by the database.
type OrderRecord struct {
	Succursale  string  `json:"succursale" validate:"required"`
	Operateur   string  `json:"operateur" validate:"required"`
	DateCde     *string `json:"date_cde,omitempty" validate:"omitempty,datetime=2006-01-02"`
	NumCde      string  `json:"num_cde" validate:"required"`
	PoClient    *string `json:"po_client,omitempty"`
	Reference   string  `json:"reference" validate:"required"`
	Designation string  `json:"designation" validate:"required"`
	QteCde      float64 `json:"qte_cde"`
	QteLivree   float64 `json:"qte_livree"`
	DateBl      *string `json:"date_bl,omitempty" validate:"omitempty,datetime=2006-01-02"`
	NumBl       *string `json:"num_bl,omitempty"`
	Status      string  `json:"status"`
	NumClient   *string `json:"num_client,omitempty"`
	NomClients  *string `json:"nom_clients,omitempty"`
}

// DefaultStatus is assigned to records whose status column is absent or blank.
const DefaultStatus = "Pending"

// ImportPhase indicates the current stage of an import.
type ImportPhase string

const (
	PhaseStarting  ImportPhase = "starting"
	PhaseReplacing ImportPhase = "replacing"
	PhaseInserting ImportPhase = "inserting"
	PhaseComplete  ImportPhase = "complete"
	PhaseFailed    ImportPhase = "failed"
)

// ImportProgress is a snapshot of a running import.
type ImportProgress struct {
	ImportID string      `json:"import_id"`
	FileName string      `json:"file_name"`
	Phase    ImportPhase `json:"phase"`
	Inserted int         `json:"inserted"`
	Total    int         `json:"total"`
	Rejected int         `json:"rejected"`
	Error    string      `json:"error,omitempty"`
}

// Percent returns the progress as a percentage (0-100).
func (p ImportProgress) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	return (p.Inserted * 100) / p.Total
}

// ImportResult is the final outcome of an import.
type ImportResult struct {
	ImportID string        `json:"import_id"`
	FileName string        `json:"file_name"`
	Total    int           `json:"total"`
	Imported int           `json:"imported"`
	Rejected int           `json:"rejected"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
	Code     string        `json:"code,omitempty"`
	Remote   *RemoteError  `json:"remote,omitempty"`
}

// ProgressFunc receives (records inserted so far, total records).
type ProgressFunc func(inserted, total int)

// Order is a stored otc_orders row as returned by search.
type Order struct {
	ID int64 `json:"id"`
	OrderRecord
	Solde     *float64  `json:"solde,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SortSpec represents a sort column and direction.
type SortSpec struct {
	Column string `json:"column"`
	Dir    string `json:"dir"`
}

// OrderFilter holds the search state of the orders page. The zero value
// matches every row.
type OrderFilter struct {
	Query      string   `json:"q,omitempty"`
	Succursale string   `json:"succursale,omitempty"`
	Status     string   `json:"status,omitempty"`
	DateFrom   string   `json:"date_from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DateTo     string   `json:"date_to,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Sort       SortSpec `json:"sort"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
}

// OrderPage is one page of search results.
type OrderPage struct {
	Orders     []Order     `json:"orders"`
	TotalRows  int64       `json:"total_rows"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
	Filter     OrderFilter `json:"filter"`
}

// CalculationMethod selects how a project's analytics are derived.
type CalculationMethod string

const (
	MethodORBased  CalculationMethod = "or_based"
	MethodOTCBased CalculationMethod = "otc_based"
)

// Valid reports whether m is a method the database accepts.
func (m CalculationMethod) Valid() bool {
	return m == MethodORBased || m == MethodOTCBased
}

// ProjectSetting is a project's calculation configuration.
type ProjectSetting struct {
	ProjectUUID       string            `json:"project_uuid"`
	Name              string            `json:"name"`
	CalculationMethod CalculationMethod `json:"calculation_method"`
	UpdatedAt         time.Time         `json:"updated_at"`
}
