package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNormalizeOrders_ExampleRecord(t *testing.T) {
	text := "SUCCURSALE;OPERATEUR;DATE CDE;NUM CDE;REFERENCE;DESIGNATION;QTE CDE\n" +
		"GDC;john;24/06/2024;CMD001;REF1;Part A;10\n"

	records, stats, err := NormalizeOrders(text)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, OrderRecord{
		Succursale:  "GDC",
		Operateur:   "john",
		DateCde:     strPtr("2024-06-24"),
		NumCde:      "CMD001",
		Reference:   "REF1",
		Designation: "Part A",
		QteCde:      10,
		Status:      "Pending",
	}, records[0])
	assert.Equal(t, NormalizeStats{Valid: 1, Rejected: 0}, stats)
}

func TestNormalizeOrders_AllColumns(t *testing.T) {
	text := "Succursale;Opérateur;Date Cde;Num Cde;PO Client;Référence;Désignation;Qté Cde;Qté Livrée;Solde;Date BL;Num BL;Status;Num Client;Nom Clients\r\n" +
		"GDC;john;24-06-2024;CMD001;PO-77;REF1;Part A;12,5;2;10,5;01/07/2024;BL9;Shipped;C042;ACME SA\r\n"

	records, _, err := NormalizeOrders(text)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, OrderRecord{
		Succursale:  "GDC",
		Operateur:   "john",
		DateCde:     strPtr("2024-06-24"),
		NumCde:      "CMD001",
		PoClient:    strPtr("PO-77"),
		Reference:   "REF1",
		Designation: "Part A",
		QteCde:      12.5,
		QteLivree:   2,
		DateBl:      strPtr("2024-07-01"),
		NumBl:       strPtr("BL9"),
		Status:      "Shipped",
		NumClient:   strPtr("C042"),
		NomClients:  strPtr("ACME SA"),
	}, records[0])
}

func TestNormalizeOrders_RowRules(t *testing.T) {
	header := "Succursale;Operateur;Date Cde;Num Cde;Reference;Designation;Qte Cde;Date BL\n"

	tests := []struct {
		name         string
		rows         string
		wantValid    int
		wantRejected int
	}{
		{
			name:      "valid row",
			rows:      "GDC;john;24/06/2024;CMD001;REF1;Part A;10;\n",
			wantValid: 1,
		},
		{
			name:         "unparseable date_cde drops the row",
			rows:         "GDC;john;soon;CMD001;REF1;Part A;10;\nGDC;john;24/06/2024;CMD002;REF1;Part A;10;\n",
			wantValid:    1,
			wantRejected: 1,
		},
		{
			name:         "impossible date_cde drops the row",
			rows:         "GDC;john;31/02/2024;CMD001;REF1;Part A;10;\nGDC;john;;CMD002;REF1;Part A;10;\n",
			wantValid:    1,
			wantRejected: 1,
		},
		{
			name:      "field count mismatch is skipped and not counted",
			rows:      "GDC;john\nGDC;john;24/06/2024;CMD001;REF1;Part A;10;;extra\nGDC;john;24/06/2024;CMD002;REF1;Part A;10;\n",
			wantValid: 1,
		},
		{
			name:         "empty required field",
			rows:         "GDC;;24/06/2024;CMD001;REF1;Part A;10;\nGDC;john;24/06/2024;CMD002;REF1;Part A;10;\n",
			wantValid:    1,
			wantRejected: 1,
		},
		{
			name:      "bad date_bl is dropped, row kept",
			rows:      "GDC;john;24/06/2024;CMD001;REF1;Part A;10;later\n",
			wantValid: 1,
		},
		{
			name:      "blank lines ignored",
			rows:      "\nGDC;john;24/06/2024;CMD001;REF1;Part A;10;\n\n\nGDC;john;24/06/2024;CMD002;REF1;Part A;abc;\n",
			wantValid: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, stats, err := NormalizeOrders(header + tt.rows)
			require.NoError(t, err)
			assert.Len(t, records, tt.wantValid)
			assert.Equal(t, tt.wantValid, stats.Valid)
			assert.Equal(t, tt.wantRejected, stats.Rejected)
		})
	}
}

func TestNormalizeOrders_Defaults(t *testing.T) {
	text := "Succursale,Operateur,Num Cde,Reference,Designation,Qte Cde,Qte Livree,Status\n" +
		"GDC,john,CMD001,REF1,Part A,n/a,,  \n"

	records, _, err := NormalizeOrders(text)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Nil(t, r.DateCde)
	assert.Nil(t, r.DateBl)
	assert.Nil(t, r.PoClient)
	assert.Zero(t, r.QteCde)
	assert.Zero(t, r.QteLivree)
	assert.Equal(t, DefaultStatus, r.Status)
}

func TestNormalizeOrders_NoValidRows(t *testing.T) {
	text := "Succursale;Operateur;Date Cde;Num Cde;Reference;Designation;Qte Cde\n" +
		"GDC;john;bad;CMD001;REF1;Part A;10\n" +
		";john;24/06/2024;CMD002;REF1;Part A;10\n"

	records, stats, err := NormalizeOrders(text)
	assert.ErrorIs(t, err, ErrNoValidRows)
	assert.Nil(t, records)
	assert.Equal(t, 2, stats.Rejected)
}

func TestNormalizeOrders_HeaderOnly(t *testing.T) {
	_, _, err := NormalizeOrders("Succursale;Operateur;Num Cde;Reference;Designation;Qte Cde\n")
	assert.ErrorIs(t, err, ErrNoValidRows)
}

func TestParseOrders_NoHeader(t *testing.T) {
	_, err := ParseOrders("\n  \n\r\n")
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestParseOrders_LeadingBlankLines(t *testing.T) {
	text := "\n\nSuccursale;Operateur;Num Cde;Reference;Designation;Qte Cde\n" +
		"GDC;john;CMD001;REF1;Part A;1\n" +
		"GDC;john;CMD002;REF1;;1\n"

	parsed, err := ParseOrders(text)
	require.NoError(t, err)

	var rowErrs []*RowError
	for _, err := range parsed.Records() {
		var re *RowError
		if errors.As(err, &re) {
			rowErrs = append(rowErrs, re)
		}
	}
	require.Len(t, rowErrs, 1)
	assert.Equal(t, 5, rowErrs[0].Line)
	assert.Contains(t, rowErrs[0].Reason, "required field designation is empty")
}

func TestOrderCSV_RecordsIsRestartableByReparsing(t *testing.T) {
	text := "Succursale;Operateur;Num Cde;Reference;Designation;Qte Cde\n" +
		"GDC;john;CMD001;REF1;Part A;1\n" +
		"GDC;john;CMD002;REF2;Part B;2\n"

	first, err := ParseOrders(text)
	require.NoError(t, err)

	// Stop after the first record.
	for rec, err := range first.Records() {
		require.NoError(t, err)
		assert.Equal(t, "CMD001", rec.NumCde)
		break
	}

	second, err := ParseOrders(text)
	require.NoError(t, err)
	var nums []string
	for rec, err := range second.Records() {
		require.NoError(t, err)
		nums = append(nums, rec.NumCde)
	}
	assert.Equal(t, []string{"CMD001", "CMD002"}, nums)
}

func TestNormalizeOrders_QuotedFields(t *testing.T) {
	text := `Succursale,Operateur,Num Cde,Reference,Designation,Qte Cde` + "\n" +
		`GDC,john,="00123",REF1,"Bolt, 10mm","1,5"` + "\n"

	records, _, err := NormalizeOrders(text)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "00123", records[0].NumCde)
	assert.Equal(t, "Bolt, 10mm", records[0].Designation)
	assert.InDelta(t, 1.5, records[0].QteCde, 1e-9)
}

func TestNormalizeOrders_UnbalancedQuoteStaysOnItsLine(t *testing.T) {
	text := "SUCCURSALE;OPERATEUR;DATE CDE;NUM CDE;REFERENCE;DESIGNATION;QTE CDE\n" +
		"GDC;john;24/06/2024;CMD001;REF1;\"12 inch pipe;10\n" +
		"GDC;john;24/06/2024;CMD002;REF2;Part B;5\n" +
		"GDC;john;25/06/2024;CMD003;REF3;Part C;7\n"

	records, stats, err := NormalizeOrders(text)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "CMD002", records[0].NumCde)
	assert.Equal(t, "CMD003", records[1].NumCde)
	assert.Equal(t, 2, stats.Valid)
}

func BenchmarkNormalizeOrders(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("Succursale;Operateur;Date Cde;Num Cde;Reference;Designation;Qte Cde;Qte Livree\n")
	for i := 0; i < 10000; i++ {
		sb.WriteString("GDC;john;24/06/2024;CMD001;REF1;Part A;1 234,5;12\n")
	}
	text := sb.String()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := NormalizeOrders(text); err != nil {
			b.Fatal(err)
		}
	}
}
