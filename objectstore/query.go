package objectstore

import "github.com/hsn2-platform/worker-core/objectmodel"

// QueryStructure selects objects by the attributes set on Attrs: each
// attribute present becomes one filter criterion, and Negate is copied
// onto every one of them. An EMPTY (flag) attribute matches objects
// where the attribute is merely present (BY_ATTR_NAME); an attribute of
// any other kind matches objects carrying that exact value
// (BY_ATTR_VALUE).
type QueryStructure struct {
	Attrs  *objectmodel.Object
	Negate bool
}

// NewQueryStructure builds a QueryStructure over attrs.
func NewQueryStructure(attrs *objectmodel.Object, negate bool) QueryStructure {
	return QueryStructure{Attrs: attrs, Negate: negate}
}

func (q QueryStructure) expand() ([]queryEntry, error) {
	entries := make([]queryEntry, 0, len(q.Attrs.Attributes()))
	for _, attr := range q.Attrs.Attributes() {
		entry := queryEntry{attrName: attr.Name, negate: q.Negate}
		if attr.Kind == objectmodel.KindEmpty {
			qt, err := objectmodel.NameToNumber("QueryType", "BY_ATTR_NAME")
			if err != nil {
				return nil, err
			}
			entry.queryType = qt
		} else {
			qt, err := objectmodel.NameToNumber("QueryType", "BY_ATTR_VALUE")
			if err != nil {
				return nil, err
			}
			entry.queryType = qt
			entry.attrValue = attr
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
