package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type OtcOrder struct {
	ID          int64
	Succursale  string
	Operateur   string
	DateCde     pgtype.Date
	NumCde      string
	PoClient    pgtype.Text
	Reference   string
	Designation string
	QteCde      float64
	QteLivree   float64
	Solde       pgtype.Float8
	DateBl      pgtype.Date
	NumBl       pgtype.Text
	Status      string
	NumClient   pgtype.Text
	NomClients  pgtype.Text
	CreatedAt   pgtype.Timestamptz
}

type ProjectSetting struct {
	ProjectUuid       pgtype.UUID
	Name              string
	CalculationMethod string
	UpdatedAt         pgtype.Timestamptz
}
