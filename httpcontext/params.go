package httpcontext

// Param is a single named value captured while matching a request path.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of path captures. Lookups scan in insertion
// order, so the first capture with a given name wins.
type Params []Param

func (ps Params) Get(name string) (string, bool) {
	for i := range ps {
		if ps[i].Key == name {
			return ps[i].Value, true
		}
	}
	return "", false
}

func (ps Params) ByName(name string) string {
	v, _ := ps.Get(name)
	return v
}
