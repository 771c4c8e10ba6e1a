package parse

import (
	"strconv"
	"strings"

	errors "gopkg.in/src-d/go-errors.v1"
	"gopkg.in/src-d/go-vitess.v0/vt/sqlparser"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

// ErrInvalidColumnType is returned when a column type definition cannot be
// parsed.
var ErrInvalidColumnType = errors.NewKind("invalid column type %q: %s")

// ParseColumnType parses a column type definition as it would appear in a
// CREATE TABLE statement, such as "varchar(10)" or "decimal(5, 2) not null".
func ParseColumnType(s string) (sql.Type, error) {
	stmt, err := sqlparser.ParseStrictDDL("CREATE TABLE t (c " + expandTypeAliases(s) + ")")
	if err != nil {
		return nil, ErrInvalidColumnType.New(s, err)
	}

	ddl, ok := stmt.(*sqlparser.DDL)
	if !ok || ddl.TableSpec == nil {
		return nil, ErrInvalidColumnType.New(s, "not a column type")
	}

	spec := ddl.TableSpec
	if len(spec.Columns) != 1 || len(spec.Indexes) > 0 || strings.TrimSpace(spec.Options) != "" {
		return nil, ErrInvalidColumnType.New(s, "expected a single column type")
	}

	return columnTypeToType(s, &spec.Columns[0].Type)
}

// expandTypeAliases rewrites BOOL and BOOLEAN, which MySQL defines as
// synonyms of TINYINT(1).
func expandTypeAliases(s string) string {
	fields := strings.Fields(s)
	if len(fields) > 0 {
		switch strings.ToLower(fields[0]) {
		case "bool", "boolean":
			fields[0] = "tinyint(1)"
		}
	}
	return strings.Join(fields, " ")
}

func columnTypeToType(s string, ct *sqlparser.ColumnType) (sql.Type, error) {
	switch {
	case bool(ct.Unsigned) || bool(ct.Zerofill):
		return nil, ErrUnsupportedFeature.New("unsigned column type " + s)
	case bool(ct.Autoincrement) || ct.Default != nil || ct.OnUpdate != nil || ct.Comment != nil || ct.KeyOpt != 0:
		return nil, ErrInvalidColumnType.New(s, "column options are not allowed")
	case ct.Charset != "" || ct.Collate != "":
		return nil, ErrUnsupportedFeature.New("character sets and collations")
	}

	typ, err := baseColumnType(s, ct)
	if err != nil {
		return nil, err
	}

	if ct.NotNull {
		typ = sql.NotNull(typ)
	}
	return typ, nil
}

func baseColumnType(s string, ct *sqlparser.ColumnType) (sql.Type, error) {
	switch strings.ToLower(ct.Type) {
	case "int", "integer":
		return sql.Integer, nil
	case "bigint":
		return sql.BigInt, nil
	case "tinyint":
		if n, err := sqlValInt(ct.Length, 0); err != nil || n != 1 {
			return nil, ErrUnsupportedFeature.New("column type " + s)
		}
		return sql.Boolean, nil
	case "double", "real":
		if ct.Length != nil {
			return nil, ErrUnsupportedFeature.New("column type " + s)
		}
		return sql.Double, nil
	case "decimal", "numeric":
		precision, err := sqlValInt(ct.Length, 10)
		if err != nil {
			return nil, ErrInvalidColumnType.New(s, err)
		}
		scale, err := sqlValInt(ct.Scale, 0)
		if err != nil {
			return nil, ErrInvalidColumnType.New(s, err)
		}
		return sql.CreateDecimalType(precision, scale)
	case "char":
		n, err := sqlValInt(ct.Length, 1)
		if err != nil {
			return nil, ErrInvalidColumnType.New(s, err)
		}
		return sql.CreateStringType(sql.KindChar, n)
	case "varchar":
		if ct.Length == nil {
			return nil, ErrInvalidColumnType.New(s, "VARCHAR requires a length")
		}
		n, err := sqlValInt(ct.Length, 0)
		if err != nil {
			return nil, ErrInvalidColumnType.New(s, err)
		}
		return sql.CreateStringType(sql.KindVarchar, n)
	case "text":
		return sql.Text, nil
	case "date":
		return sql.Date, nil
	case "datetime", "timestamp":
		if ct.Length != nil {
			return nil, ErrUnsupportedFeature.New("fractional seconds in " + s)
		}
		return sql.Timestamp, nil
	}

	return nil, ErrUnsupportedFeature.New("column type " + s)
}

func sqlValInt(v *sqlparser.SQLVal, def int) (int, error) {
	if v == nil {
		return def, nil
	}
	return strconv.Atoi(string(v.Val))
}
