package geo

// Kind is the type of map marker.
type Kind string

// Marker kinds.
const (
	KindUser     Kind = "user"
	KindProperty Kind = "property"
)

// IsValid reports whether k is a supported marker kind.
func (k Kind) IsValid() bool { return k == KindUser || k == KindProperty }

// Point is a map marker. Points decoded without usable coordinates keep their
// id and fields but never match a distance filter.
type Point struct {
	id     string
	kind   Kind
	coord  Coordinate
	valid  bool
	fields map[string]any
}

// NewPoint creates a marker. Out-of-range or non-finite coordinates produce a
// point without coordinates rather than an error.
func NewPoint(id string, kind Kind, lat, lon float64, fields map[string]any) Point {
	return Point{
		id:     id,
		kind:   kind,
		coord:  Coordinate{Lat: lat, Lon: lon},
		valid:  ValidateCoordinates(lat, lon),
		fields: fields,
	}
}

// NewPointWithoutCoordinates creates a marker whose coordinates are missing or malformed.
func NewPointWithoutCoordinates(id string, kind Kind, fields map[string]any) Point {
	return Point{id: id, kind: kind, fields: fields}
}

// ID returns the marker identifier.
func (p *Point) ID() string { return p.id }

// Kind returns the marker kind.
func (p *Point) Kind() Kind { return p.kind }

// Coordinate returns the marker position and whether it is usable.
func (p *Point) Coordinate() (Coordinate, bool) { return p.coord, p.valid }

// HasCoordinates reports whether the marker can take part in distance filtering.
func (p *Point) HasCoordinates() bool { return p.valid }

// Fields returns the pass-through descriptive attributes.
func (p *Point) Fields() map[string]any { return p.fields }
