package classifier

import "fmt"

// Label is a classifier output class. The integer values are the
// artifact's class indices and must not be renumbered.
type Label int

const (
	Aadhaar Label = iota
	PAN
	Tampered
)

// NumClasses is the size of the label set
const NumClasses = 3

var labelNames = [NumClasses]string{"Aadhaar", "PAN", "Tampered"}

func (l Label) String() string {
	if l < 0 || int(l) >= NumClasses {
		return fmt.Sprintf("Label(%d)", int(l))
	}
	return labelNames[l]
}

// Valid reports whether l is one of the known classes
func (l Label) Valid() bool {
	return l >= 0 && int(l) < NumClasses
}
