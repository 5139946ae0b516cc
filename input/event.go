package input

// Key is a physical device control
type Key uint8

const (
	KeyUp Key = iota
	KeyDown
	KeyRight
	KeyLeft
	KeyOK
	KeyBack
	keyCount
)

var keyNames = [keyCount]string{
	KeyUp:    "up",
	KeyDown:  "down",
	KeyRight: "right",
	KeyLeft:  "left",
	KeyOK:    "ok",
	KeyBack:  "back",
}

// String returns the config name of the key
func (k Key) String() string {
	if k < keyCount {
		return keyNames[k]
	}
	return "unknown"
}

// KeyByName resolves a config name to a device key
func KeyByName(name string) (Key, bool) {
	for k, n := range keyNames {
		if n == name {
			return Key(k), true
		}
	}
	return 0, false
}

// Type is the phase of a key transition
type Type uint8

const (
	TypePress   Type = iota // Key went down
	TypeRelease             // Key went up
	TypeShort               // Press and release within the long press threshold
	TypeLong                // Held past the long press threshold
	TypeRepeat              // Auto-repeat while held past the threshold
)

var typeNames = [...]string{
	TypePress:   "press",
	TypeRelease: "release",
	TypeShort:   "short",
	TypeLong:    "long",
	TypeRepeat:  "repeat",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// Event is one input transition delivered to subscribers
// Events of the same stroke share a Sequence
type Event struct {
	Type     Type
	Key      Key
	Sequence uint32
}
