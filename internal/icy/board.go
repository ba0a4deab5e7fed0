// Package icy holds the host session state a program reads and writes: board
// configuration, user records, the node table and display texts.
package icy

import "fmt"

// Board is the sysop's board configuration.
type Board struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Sysop       string `yaml:"sysop"`
	Password    string `yaml:"password"`
	UseRealName bool   `yaml:"use_real_name"`
	Node        int    `yaml:"node"`
}

// Address is a user's postal address.
type Address struct {
	Street1 string `yaml:"street1"`
	Street2 string `yaml:"street2"`
	City    string `yaml:"city"`
	State   string `yaml:"state"`
	Zip     string `yaml:"zip"`
	Country string `yaml:"country"`
}

// User is one user record.
type User struct {
	Name           string  `yaml:"name"`
	Alias          string  `yaml:"alias,omitempty"`
	City           string  `yaml:"city"`
	Password       string  `yaml:"password"`
	PasswordExpire int32   `yaml:"password_expire,omitempty"`
	BusDataPhone   string  `yaml:"bus_data_phone,omitempty"`
	HomeVoicePhone string  `yaml:"home_voice_phone,omitempty"`
	Security       int     `yaml:"security"`
	PageLen        int     `yaml:"page_len"`
	Scroll         bool    `yaml:"scroll"`
	ExpertMode     bool    `yaml:"expert"`
	TimesOn        int     `yaml:"times_on"`
	Uploads        int     `yaml:"uploads"`
	Downloads      int     `yaml:"downloads"`
	Comment        string  `yaml:"comment,omitempty"`
	SysopComment   string  `yaml:"sysop_comment,omitempty"`
	Address        Address `yaml:"address"`
}

// AddressLines returns the six address lines, falling back to the user's
// city and placeholder labels for unset fields.
func (u *User) AddressLines() [6]string {
	a := u.Address
	pick := func(s, def string) string {
		if s == "" {
			return def
		}
		return s
	}
	return [6]string{
		pick(a.Street1, "Address Line 1"),
		pick(a.Street2, "Address Line 2"),
		pick(a.City, u.City),
		pick(a.State, "State"),
		pick(a.Zip, "ZIP Code"),
		pick(a.Country, "Country"),
	}
}

// SetAddressLines stores six address lines; the third also sets the city.
func (u *User) SetAddressLines(lines [6]string) {
	u.Address = Address{
		Street1: lines[0],
		Street2: lines[1],
		City:    lines[2],
		State:   lines[3],
		Zip:     lines[4],
		Country: lines[5],
	}
	if lines[2] != "" {
		u.City = lines[2]
	}
}

// Node is one entry of the node table.
type Node struct {
	Status    string `yaml:"status"`
	Name      string `yaml:"name"`
	City      string `yaml:"city"`
	Operation string `yaml:"operation"`
}

// Node status codes.
const (
	NodeAvailable = "A"
	NodeOffline   = "O"
	NodeInDoor    = "D"
)

// BoardData is the state shared between the host and one program run.
type BoardData struct {
	Board       Board          `yaml:"board"`
	Users       []User         `yaml:"users"`
	CurrentUser int            `yaml:"current_user"`
	Nodes       []Node         `yaml:"nodes"`
	Texts       map[int]string `yaml:"texts"`
}

// IndexError reports a user or node reference outside its table.
type IndexError struct {
	Table string
	Index int
	Len   int
}

func (err IndexError) Error() string {
	return fmt.Sprintf("%v %v out of range (have %v)", err.Table, err.Index, err.Len)
}

// User returns the user record at 0-based index i.
func (bd *BoardData) User(i int) (*User, error) {
	if i < 0 || i >= len(bd.Users) {
		return nil, IndexError{"user", i, len(bd.Users)}
	}
	return &bd.Users[i], nil
}

// Current returns the session's current user record.
func (bd *BoardData) Current() (*User, error) { return bd.User(bd.CurrentUser) }

// Node returns the node table entry for 1-based node number n.
func (bd *BoardData) Node(n int) (*Node, error) {
	if n < 1 || n > len(bd.Nodes) {
		return nil, IndexError{"node", n, len(bd.Nodes)}
	}
	return &bd.Nodes[n-1], nil
}

// Text returns a display text template.
func (bd *BoardData) Text(n int) (string, bool) {
	s, ok := bd.Texts[n]
	return s, ok
}

// Clone returns a deep copy.
func (bd *BoardData) Clone() *BoardData {
	dup := *bd
	dup.Users = append([]User(nil), bd.Users...)
	dup.Nodes = append([]Node(nil), bd.Nodes...)
	if bd.Texts != nil {
		dup.Texts = make(map[int]string, len(bd.Texts))
		for k, v := range bd.Texts {
			dup.Texts[k] = v
		}
	}
	return &dup
}
