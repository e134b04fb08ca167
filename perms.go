package simfs

import (
	"fmt"
	"strings"
)

// PermissionClass selects one row of an inode's permission matrix.
type PermissionClass int

const (
	ClassUser PermissionClass = iota
	ClassGroup
	ClassGeneral
)

var classNames = map[string]PermissionClass{
	"user":    ClassUser,
	"group":   ClassGroup,
	"general": ClassGeneral,
}

// ParsePermissionClass maps the class name used on the command line to a
// PermissionClass value.
func ParsePermissionClass(name string) (PermissionClass, error) {
	class, ok := classNames[strings.ToLower(name)]
	if !ok {
		return ClassUser, ErrInvalidFormat.WithMessage(
			fmt.Sprintf("unknown permission class %q; expected user, group, or general", name))
	}
	return class, nil
}

func (c PermissionClass) String() string {
	switch c {
	case ClassUser:
		return "user"
	case ClassGroup:
		return "group"
	case ClassGeneral:
		return "general"
	}
	return fmt.Sprintf("PermissionClass(%d)", int(c))
}

// ModeBits is one row of the permission matrix: the read/write/execute
// grants for a single class.
type ModeBits struct {
	Read    bool
	Write   bool
	Execute bool
}

// ParseModeBits converts a permission string such as "rwx", "rx", or "w"
// into ModeBits. Only the characters r, w, and x are accepted, in any order
// and with repeats allowed; anything else is an InvalidFormat error. The
// empty string clears all three bits.
func ParseModeBits(mode string) (ModeBits, error) {
	var bits ModeBits
	for _, ch := range mode {
		switch ch {
		case 'r':
			bits.Read = true
		case 'w':
			bits.Write = true
		case 'x':
			bits.Execute = true
		default:
			return ModeBits{}, ErrInvalidFormat.WithMessage(
				fmt.Sprintf("invalid character %q in permission string %q", ch, mode))
		}
	}
	return bits, nil
}

func (b ModeBits) String() string {
	chars := []byte{'-', '-', '-'}
	if b.Read {
		chars[0] = 'r'
	}
	if b.Write {
		chars[1] = 'w'
	}
	if b.Execute {
		chars[2] = 'x'
	}
	return string(chars)
}

// PermissionMatrix is the full 3x3 permission table of an inode. The Group
// row is stored and mutable like the others but no operation consults it;
// there is no group roster in this model.
type PermissionMatrix struct {
	User    ModeBits
	Group   ModeBits
	General ModeBits
}

// DefaultPermissions returns the matrix applied to every new inode:
// rwxr-xr--.
func DefaultPermissions() PermissionMatrix {
	return PermissionMatrix{
		User:    ModeBits{Read: true, Write: true, Execute: true},
		Group:   ModeBits{Read: true, Execute: true},
		General: ModeBits{Read: true},
	}
}

// Class returns the row for the given class.
func (m PermissionMatrix) Class(class PermissionClass) ModeBits {
	switch class {
	case ClassGroup:
		return m.Group
	case ClassGeneral:
		return m.General
	default:
		return m.User
	}
}

// SetClass overwrites the three bits of one row atomically.
func (m *PermissionMatrix) SetClass(class PermissionClass, bits ModeBits) {
	switch class {
	case ClassGroup:
		m.Group = bits
	case ClassGeneral:
		m.General = bits
	default:
		m.User = bits
	}
}

// String renders the matrix in the familiar ls style, e.g. "rwxr-xr--".
func (m PermissionMatrix) String() string {
	return m.User.String() + m.Group.String() + m.General.String()
}
