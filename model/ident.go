package model

// Ident names a book or user either by store id or by name.
// Exactly one side is set; resolution belongs to the owning service.
type Ident struct {
	ID   int64
	Name string
}

func ByID(id int64) Ident { return Ident{ID: id} }

func ByName(name string) Ident { return Ident{Name: name} }

func (i Ident) IsID() bool { return i.ID > 0 }

func (i Ident) IsZero() bool { return i.ID <= 0 && i.Name == "" }
