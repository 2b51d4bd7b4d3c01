package core

// headers.go maps free-form CSV header rows onto the canonical order columns.
//
// Matching is deliberately loose: a header matches a synonym when either
// string contains the other. Keys are resolved in the order of
// canonicalColumns, synonyms in list order, then headers in file order, and a
// header claimed by one key is never reused by a later one.

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical column keys.
const (
	KeySuccursale  = "succursale"
	KeyOperateur   = "operateur"
	KeyDateCde     = "date cde"
	KeyNumCde      = "num cde"
	KeyPoClient    = "po client"
	KeyReference   = "reference"
	KeyDesignation = "designation"
	KeyQteCde      = "qte cde"
	KeyQteLivree   = "qte livree"
	KeySolde       = "solde"
	KeyDateBl      = "date bl"
	KeyNumBl       = "num bl"
	KeyStatus      = "status"
	KeyNumClient   = "num client"
	KeyNomClients  = "nom clients"
)

type canonicalColumn struct {
	Key      string
	Required bool
	Synonyms []string
}

// canonicalColumns is the resolution order. Synonyms are stored folded
// (lower-case, no diacritics); see foldHeader.
var canonicalColumns = []canonicalColumn{
	{Key: KeySuccursale, Required: true, Synonyms: []string{"succursale", "branch", "branche", "site", "agence"}},
	{Key: KeyOperateur, Required: true, Synonyms: []string{"operateur", "operator", "utilisateur", "vendeur", "user"}},
	{Key: KeyDateCde, Synonyms: []string{"date cde", "date_cde", "date commande", "date de commande", "order date"}},
	{Key: KeyNumCde, Required: true, Synonyms: []string{"num cde", "num_cde", "n° cde", "numero commande", "no commande", "order number", "order no"}},
	{Key: KeyPoClient, Synonyms: []string{"po client", "po_client", "customer po", "client po", "purchase order"}},
	{Key: KeyReference, Required: true, Synonyms: []string{"reference", "ref", "item code", "part number", "article"}},
	{Key: KeyDesignation, Required: true, Synonyms: []string{"designation", "description", "libelle", "item name"}},
	{Key: KeyQteCde, Required: true, Synonyms: []string{"qte cde", "qte_cde", "quantite commandee", "qty ordered", "quantity ordered"}},
	{Key: KeyQteLivree, Synonyms: []string{"qte livree", "qte_livree", "quantite livree", "qty delivered", "quantity delivered", "delivered"}},
	{Key: KeySolde, Synonyms: []string{"solde", "balance", "reste", "remaining", "backorder"}},
	{Key: KeyDateBl, Synonyms: []string{"date bl", "date_bl", "bl date", "date livraison", "delivery date"}},
	{Key: KeyNumBl, Synonyms: []string{"num bl", "num_bl", "n° bl", "numero bl", "bl number", "bon de livraison", "delivery note"}},
	{Key: KeyStatus, Synonyms: []string{"status", "statut", "etat", "state"}},
	{Key: KeyNumClient, Synonyms: []string{"num client", "num_client", "n° client", "numero client", "code client", "client id", "customer number", "customer no"}},
	{Key: KeyNomClients, Synonyms: []string{"nom clients", "nom client", "nom_clients", "raison sociale", "customer name", "client name"}},
}

// CanonicalKeys returns the canonical column keys in resolution order.
func CanonicalKeys() []string {
	keys := make([]string, len(canonicalColumns))
	for i, c := range canonicalColumns {
		keys[i] = c.Key
	}
	return keys
}

// RequiredKeys returns the keys an import cannot proceed without.
func RequiredKeys() []string {
	var keys []string
	for _, c := range canonicalColumns {
		if c.Required {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// DetectDelimiter picks the field separator from the header line:
// ';' wins over tab, tab wins over ','.
func DetectDelimiter(headerLine string) rune {
	switch {
	case strings.ContainsRune(headerLine, ';'):
		return ';'
	case strings.ContainsRune(headerLine, '\t'):
		return '\t'
	default:
		return ','
	}
}

// foldHeader normalizes a raw header for comparison: NFC, diacritics
// removed, lower-cased and trimmed. A UTF-8 BOM is dropped.
func foldHeader(h string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, h)
	if err != nil {
		folded = norm.NFC.String(h)
	}
	folded = strings.TrimPrefix(folded, "\ufeff")
	return strings.ToLower(strings.TrimSpace(folded))
}

func headerMatches(header, synonym string) bool {
	if header == "" {
		return false
	}
	return strings.Contains(header, synonym) || strings.Contains(synonym, header)
}

// HeaderMapping is the result of resolving a header row.
type HeaderMapping struct {
	// Headers holds the raw headers as they appear in the file.
	Headers []string

	index map[string]int
}

// Index returns the column position matched to key.
func (m HeaderMapping) Index(key string) (int, bool) {
	i, ok := m.index[key]
	return i, ok
}

// Header returns the raw header matched to key.
func (m HeaderMapping) Header(key string) (string, bool) {
	i, ok := m.index[key]
	if !ok {
		return "", false
	}
	return m.Headers[i], true
}

// Matched returns canonical key -> raw header for every matched key.
func (m HeaderMapping) Matched() map[string]string {
	out := make(map[string]string, len(m.index))
	for key, i := range m.index {
		out[key] = m.Headers[i]
	}
	return out
}

// Unmatched returns canonical keys with no header, in resolution order.
func (m HeaderMapping) Unmatched() []string {
	var keys []string
	for _, c := range canonicalColumns {
		if _, ok := m.index[c.Key]; !ok {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// MissingHeadersError reports required columns absent from a header row.
type MissingHeadersError struct {
	Missing []string
	Found   []string
}

func (e *MissingHeadersError) Error() string {
	return fmt.Sprintf("missing required columns: %s (found: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Found, ", "))
}

// ResolveHeaders maps raw headers onto the canonical columns. A
// *MissingHeadersError is returned when any required column is unmatched;
// the mapping is still returned for diagnostics.
func ResolveHeaders(headers []string) (HeaderMapping, error) {
	folded := make([]string, len(headers))
	for i, h := range headers {
		folded[i] = foldHeader(h)
	}

	m := HeaderMapping{
		Headers: headers,
		index:   make(map[string]int, len(canonicalColumns)),
	}
	claimed := make([]bool, len(headers))

	for _, col := range canonicalColumns {
	synonyms:
		for _, syn := range col.Synonyms {
			for i, h := range folded {
				if claimed[i] || !headerMatches(h, syn) {
					continue
				}
				m.index[col.Key] = i
				claimed[i] = true
				break synonyms
			}
		}
	}

	var missing []string
	for _, col := range canonicalColumns {
		if _, ok := m.index[col.Key]; col.Required && !ok {
			missing = append(missing, col.Key)
		}
	}
	if len(missing) > 0 {
		found := make([]string, 0, len(headers))
		for _, h := range headers {
			if h = strings.TrimSpace(h); h != "" {
				found = append(found, h)
			}
		}
		return m, &MissingHeadersError{Missing: missing, Found: found}
	}

	return m, nil
}
