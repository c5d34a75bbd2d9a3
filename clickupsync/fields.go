package clickupsync

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// extractedFields is the normalized view of a task's configurable ClickUp
// fields: every field lands in Attributes under a stable key, and the handful
// of fields the case records model as real columns are picked out typed.
type extractedFields struct {
	Attributes map[string]interface{}

	Price          *decimal.Decimal
	Address        string
	PersonalNumber string
	OrgNumber      string
	CompanyName    string
	ContactName    string
	ContactEmail   string
	ContactPhone   string
	PestType       string
}

var diacriticsFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeFieldKey turns an operator-named ClickUp field into a stable
// attribute key: lowercased, diacritics folded, non-alphanumerics collapsed
// to a single underscore. Must stay pure; the same field has to map to the
// same key on every sync.
func normalizeFieldKey(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	folded, _, err := transform.String(diacriticsFolder, lowered)
	if err != nil {
		folded = lowered
	}

	var b strings.Builder
	lastUnderscore := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

func extractCustomFields(fields []clickupCustomField) extractedFields {
	out := extractedFields{Attributes: make(map[string]interface{}, len(fields))}

	for _, field := range fields {
		key := normalizeFieldKey(field.Name)
		if key == "" || len(field.Value) == 0 || string(field.Value) == "null" {
			continue
		}

		switch field.Type {
		case "location":
			out.Attributes[key] = string(field.Value)
			if out.Address == "" {
				var loc struct {
					FormattedAddress string `json:"formatted_address"`
				}
				if err := json.Unmarshal(field.Value, &loc); err == nil && loc.FormattedAddress != "" {
					out.Address = loc.FormattedAddress
				}
			}
		case "attachment":
			out.Attributes[key] = string(field.Value)
		case "drop_down":
			out.Attributes[key] = resolveDropdown(field)
		case "currency", "number":
			d := decodeDecimal(field.Value)
			if d == nil {
				continue
			}
			out.Attributes[key] = d.String()
			if out.Price == nil && isPriceKey(key) {
				out.Price = d
			}
		case "checkbox":
			out.Attributes[key] = decodeBool(field.Value)
		default:
			s, ok := decodeString(field.Value)
			if !ok {
				continue
			}
			out.Attributes[key] = s
		}

		out.pickTyped(key)
	}

	return out
}

// pickTyped copies well-known attribute keys into the typed fields the case
// mapper populates as columns. Keys are post-normalisation (so "Företag"
// matches as "foretag").
func (e *extractedFields) pickTyped(key string) {
	value, ok := e.Attributes[key].(string)
	if !ok || value == "" {
		return
	}
	switch key {
	case "adress":
		if e.Address == "" {
			e.Address = value
		}
	case "personnummer":
		e.PersonalNumber = value
	case "organisationsnummer", "org_nr":
		e.OrgNumber = value
	case "foretag", "foretagsnamn":
		e.CompanyName = value
	case "kontaktperson":
		e.ContactName = value
	case "e_post_kontaktperson", "e_post":
		e.ContactEmail = value
	case "telefon_kontaktperson", "telefon":
		e.ContactPhone = value
	case "skadedjur", "typ_av_skadedjur":
		e.PestType = value
	}
}

func isPriceKey(key string) bool {
	return key == "pris" || key == "kostnad" || strings.HasPrefix(key, "pris_")
}

// resolveDropdown maps the stored value (an orderindex or an option id) to
// the human-readable option label, falling back to the stringified raw value
// when nothing matches.
func resolveDropdown(field clickupCustomField) string {
	raw, _ := decodeString(field.Value)

	for _, opt := range field.TypeConfig.Options {
		if opt.ID != "" && opt.ID == raw {
			return optionLabel(opt)
		}
		if opt.OrderIndex.String() != "" && opt.OrderIndex.String() == raw {
			return optionLabel(opt)
		}
	}
	return raw
}

func optionLabel(opt clickupFieldOption) string {
	if opt.Label != "" {
		return opt.Label
	}
	return opt.Name
}

func decodeString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return "true", true
		}
		return "false", true
	}
	return "", false
}

func decodeDecimal(raw json.RawMessage) *decimal.Decimal {
	s, ok := decodeString(raw)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

func decodeBool(raw json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	s, ok := decodeString(raw)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	}
	return false
}
