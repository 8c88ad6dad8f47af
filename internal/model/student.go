package model

// Address is the nested address block of a student record.  It is
// flattened into address_city/address_state columns in the database
// but kept nested in JSON to match the document shape clients expect.
type Address struct {
	City  string `json:"city"`
	State string `json:"state"`
}

// Student represents a row in the `students` table.
type Student struct {
	ID        uint64  `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Address   Address `json:"address"`
	EyeColor  string  `json:"eyeColor"`
}

// StudentPatch carries the fields of a partial student update.  Nil
// pointers mean "leave unchanged".
type StudentPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	City      *string
	State     *string
	EyeColor  *string
}
