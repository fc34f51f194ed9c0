package source

import "strings"

// Table names the backend entity a search hit comes from.
type Table string

// Known source tables.
const (
	Property    Table = "Property"
	Product     Table = "Product"
	Service     Table = "Service"
	Metier      Table = "Metier"
	BlogArticle Table = "BlogArticle"
)

var known = map[string]Table{
	"property":     Property,
	"properties":   Property,
	"product":      Product,
	"products":     Product,
	"service":      Service,
	"services":     Service,
	"metier":       Metier,
	"metiers":      Metier,
	"blogarticle":  BlogArticle,
	"blog_article": BlogArticle,
	"blogarticles": BlogArticle,
}

// Parse maps a backend discriminator ("property", "blog_article", "Metier") to a Table.
// Unknown values are returned trimmed but otherwise unchanged.
func Parse(s string) Table {
	s = strings.TrimSpace(s)
	if t, ok := known[strings.ToLower(s)]; ok {
		return t
	}
	return Table(s)
}

// IsKnown reports whether t is one of the tables the marketplace indexes.
func (t Table) IsKnown() bool {
	return t == Property || t == Product || t == Service || t == Metier || t == BlogArticle
}

func (t Table) String() string { return string(t) }
