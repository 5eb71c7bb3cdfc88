package alloc

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultMeritColumn is the merit-score header looked up when none is configured.
const DefaultMeritColumn = "CGPA"

// DefaultIdentityColumns are the pass-through identity headers looked up when
// none are configured.
var DefaultIdentityColumns = []string{"Roll", "Name", "Email"}

// Column is a resolved header: its original-cased label and its position.
type Column struct {
	Label string
	Index int
}

// Schema is the resolved view of an input table, produced once and passed by
// value to the engine and the tally.
type Schema struct {
	Merit     Column
	Identity  []Column // in configured order; unresolved names are omitted
	Faculties []Column // every column after Merit, in header order
}

// NumFaculties returns n, the round size and the preference-rank domain.
func (s Schema) NumFaculties() int { return len(s.Faculties) }

// FacultyLabels returns the faculty identifiers in column order.
func (s Schema) FacultyLabels() []string {
	labels := make([]string, len(s.Faculties))
	for i, f := range s.Faculties {
		labels[i] = f.Label
	}
	return labels
}

// SchemaConfig names the columns to resolve. Zero values select the defaults.
type SchemaConfig struct {
	MeritColumn     string
	IdentityColumns []string
}

// FindColumn returns the first header equal to target ignoring case and
// surrounding whitespace, with its original label.
func FindColumn(header []string, target string) (Column, bool) {
	want := strings.TrimSpace(target)
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), want) {
			return Column{Label: h, Index: i}, true
		}
	}
	return Column{}, false
}

// FacultyColumns returns every column positioned after merit, in header order.
func FacultyColumns(header []string, merit Column) []Column {
	var cols []Column
	for i := merit.Index + 1; i < len(header); i++ {
		cols = append(cols, Column{Label: header[i], Index: i})
	}
	return cols
}

// ResolveSchema locates the merit column, the identity columns and the faculty
// list in header. A missing merit column or an empty faculty list is a
// *SchemaError; a missing identity column is only logged.
func ResolveSchema(header []string, cfg SchemaConfig, log logrus.FieldLogger) (Schema, error) {
	log = orDiscard(log)

	meritName := cfg.MeritColumn
	if meritName == "" {
		meritName = DefaultMeritColumn
	}
	identityNames := cfg.IdentityColumns
	if identityNames == nil {
		identityNames = DefaultIdentityColumns
	}

	merit, ok := FindColumn(header, meritName)
	if !ok {
		err := &SchemaError{Reason: ErrMissingColumn, Column: meritName}
		log.WithField("header", header).Error(err)
		return Schema{}, err
	}

	faculties := FacultyColumns(header, merit)
	if len(faculties) == 0 {
		err := &SchemaError{Reason: ErrNoFacultyColumns, Column: merit.Label}
		log.WithField("header", header).Error(err)
		return Schema{}, err
	}

	var identity []Column
	for _, name := range identityNames {
		col, ok := FindColumn(header, name)
		if !ok {
			log.Warnf("identity column %q not found; omitting it from the output", name)
			continue
		}
		if col.Index > merit.Index {
			log.Warnf("identity column %q sits after %q and is treated as a faculty", col.Label, merit.Label)
			continue
		}
		identity = append(identity, col)
	}

	log.Debugf("resolved schema: merit=%q identity=%d faculties=%d", merit.Label, len(identity), len(faculties))
	return Schema{Merit: merit, Identity: identity, Faculties: faculties}, nil
}
