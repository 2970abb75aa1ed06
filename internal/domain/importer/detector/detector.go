// Package detector proposes a mapping from canonical transaction fields to
// the headers of an uploaded statement, by normalized keyword matching.
// Detection is advisory: the user may reassign any column before proceeding.
package detector

import (
	"strings"

	"github.com/rmacedo/extrato/internal/domain/importer/normalizer"
)

// Canonical field names source columns are mapped onto.
const (
	FieldDate          = "date"
	FieldAmount        = "amount"
	FieldDescription   = "description"
	FieldCategory      = "category"
	FieldType          = "type"
	FieldWallet        = "wallet"
	FieldPaymentMethod = "payment_method"
	FieldStatus        = "status"
)

// MandatoryFields must all be assigned before preview generation.
var MandatoryFields = []string{FieldDate, FieldAmount, FieldDescription}

// OptionalFields may be assigned manually or by detection.
var OptionalFields = []string{FieldCategory, FieldType, FieldWallet, FieldPaymentMethod, FieldStatus}

// detectedFields lists the fields with fixed keyword tables, in priority
// order. Earlier fields win when a header matches several. The keyword lists
// are a compatibility surface and must not be reordered or extended.
// wallet and payment_method carry no keywords and are only assigned manually.
var detectedFields = []struct {
	field    string
	keywords []string
}{
	{FieldDate, []string{"data", "date", "dt", "vencimento", "pagamento"}},
	{FieldAmount, []string{"valor", "value", "amount", "quantia", "preco", "total"}},
	{FieldDescription, []string{"descricao", "description", "historico", "memo", "detalhe"}},
	{FieldCategory, []string{"categoria", "category", "tipo", "class"}},
	{FieldType, []string{"tipo", "type", "natureza"}},
	{FieldStatus, []string{"status", "situacao", "estado"}},
}

// Mapping assigns canonical fields to source header names. Absent entries
// mean the field is unmapped.
type Mapping map[string]string

// Detect proposes a mapping for the given raw headers. Each header is
// consumed by at most one canonical field; once a field is assigned no later
// header can overwrite it.
func Detect(headers []string) Mapping {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizer.Normalize(h)
	}

	mapping := make(Mapping)
	used := make([]bool, len(headers))

	for _, df := range detectedFields {
	headerScan:
		for i, nh := range normalized {
			if used[i] || nh == "" {
				continue
			}
			for _, kw := range df.keywords {
				if strings.Contains(nh, kw) {
					mapping[df.field] = headers[i]
					used[i] = true
					break headerScan
				}
			}
		}
	}

	return mapping
}

// Complete reports whether all mandatory fields are assigned.
func (m Mapping) Complete() bool {
	for _, f := range MandatoryFields {
		if m[f] == "" {
			return false
		}
	}
	return true
}

// MissingMandatory returns the unassigned mandatory fields, in declaration order.
func (m Mapping) MissingMandatory() []string {
	var missing []string
	for _, f := range MandatoryFields {
		if m[f] == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Known reports whether field is a canonical field name.
func Known(field string) bool {
	for _, f := range MandatoryFields {
		if f == field {
			return true
		}
	}
	for _, f := range OptionalFields {
		if f == field {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the mapping.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
