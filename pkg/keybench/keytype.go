package keybench

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnknownKeyType  = errors.New("unknown key type")
	ErrInvalidRowCount = errors.New("row count must be positive")
)

// Generator returns the next key in its text form.
type Generator func() (string, error)

// KeyType is a primary key type and the table that stores it.
type KeyType struct {
	Name   string
	Table  string
	Column string

	// newUUID is nil for serial keys.
	newUUID func() (uuid.UUID, error)
}

var keyTypes = []KeyType{
	{Name: "bigserial", Table: "uuid_long", Column: "BigSerial"},
	{Name: "uuid1", Table: "uuid_v1", Column: "uuid", newUUID: uuid.NewUUID},
	{Name: "uuid4", Table: "uuid_v4", Column: "uuid", newUUID: uuid.NewRandom},
	{Name: "uuid6", Table: "uuid_v6", Column: "uuid", newUUID: uuid.NewV6},
	{Name: "uuid7", Table: "uuid_v7", Column: "uuid", newUUID: uuid.NewV7},
}

// KeyTypes returns every supported key type.
func KeyTypes() []KeyType {
	return slices.Clone(keyTypes)
}

// KeyTypeNames returns the names of [KeyTypes].
func KeyTypeNames() []string {
	names := make([]string, 0, len(keyTypes))
	for _, kt := range keyTypes {
		names = append(names, kt.Name)
	}

	return names
}

// LookupKeyType finds a key type by name, ignoring case.
func LookupKeyType(name string) (KeyType, error) {
	for _, kt := range keyTypes {
		if strings.EqualFold(kt.Name, name) {
			return kt, nil
		}
	}

	return KeyType{}, fmt.Errorf("%w: %q (want one of %s)",
		ErrUnknownKeyType, name, strings.Join(KeyTypeNames(), ", "))
}

// Serial reports whether keys are sequence numbers rather than UUIDs.
func (kt KeyType) Serial() bool {
	return kt.newUUID == nil
}

// NewGenerator returns a key generator. Serial keys continue after last.
func (kt KeyType) NewGenerator(last int64) Generator {
	if kt.Serial() {
		next := last

		return func() (string, error) {
			next++

			return strconv.FormatInt(next, 10), nil
		}
	}

	return func() (string, error) {
		id, err := kt.newUUID()
		if err != nil {
			return "", fmt.Errorf("generate %s key: %w", kt.Name, err)
		}

		return id.String(), nil
	}
}

// ParseKey checks that s is a key of this type and returns its canonical
// form.
func (kt KeyType) ParseKey(s string) (string, error) {
	if kt.Serial() {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return "", fmt.Errorf("parse %s key %q: %w", kt.Name, s, err)
		}

		return strconv.FormatInt(n, 10), nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("parse %s key %q: %w", kt.Name, s, err)
	}

	return id.String(), nil
}

func (kt KeyType) CreateTableSQL() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
    id %[2]s NOT NULL,
    value bytea NULL,
    CONSTRAINT "%[1]s_pk" PRIMARY KEY (id)
)`, kt.Table, kt.Column)
}

func (kt KeyType) SelectSQL() string {
	return fmt.Sprintf("SELECT value FROM %s WHERE id = $1", kt.Table)
}

func (kt KeyType) String() string {
	return kt.Name
}
