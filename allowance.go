package sumonetvis

import (
	"strings"
)

const allowanceMaskAll = uint32(1)<<numVehicleClasses - 1

// Allowance is a vehicle class permission set, stored as a bitmask over the
// closed VehicleClass enumeration. It is an immutable value type and cheap
// to copy.
type Allowance struct {
	mask uint32
}

// NewAllowance builds an Allowance from SUMO "allow" and "disallow" attribute
// strings (space separated vehicle class lists). An empty or "all" allow
// string permits every class; the disallow list is then subtracted.
func NewAllowance(allowString, disallowString string) (Allowance, error) {
	allowMask := allowanceMaskAll
	if allowString != "all" && allowString != "" {
		var err error
		allowMask, err = parseClassList(allowString)
		if err != nil {
			return Allowance{}, err
		}
	}
	disallowMask := uint32(0)
	if disallowString == "all" {
		disallowMask = allowanceMaskAll
	} else if disallowString != "" {
		var err error
		disallowMask, err = parseClassList(disallowString)
		if err != nil {
			return Allowance{}, err
		}
	}
	return Allowance{mask: allowMask &^ disallowMask}, nil
}

func parseClassList(classList string) (uint32, error) {
	mask := uint32(0)
	for _, name := range strings.Fields(classList) {
		class, err := VehicleClassFromString(name)
		if err != nil {
			return 0, err
		}
		mask |= 1 << class
	}
	return mask, nil
}

// Allows reports whether the given vehicle class is permitted.
func (a Allowance) Allows(class VehicleClass) bool {
	return a.mask&(1<<class) != 0
}

// AllowsClass checks a permission by vehicle class name. The sentinels "all"
// and "none" test whether every class, respectively no class, is permitted.
func (a Allowance) AllowsClass(name string) (bool, error) {
	switch name {
	case "all":
		return a.AllowsAll(), nil
	case "none":
		return a.AllowsNone(), nil
	}
	class, err := VehicleClassFromString(name)
	if err != nil {
		return false, err
	}
	return a.Allows(class), nil
}

// AllowsAll reports whether every vehicle class is permitted.
func (a Allowance) AllowsAll() bool {
	return a.mask == allowanceMaskAll
}

// AllowsNone reports whether no vehicle class is permitted.
func (a Allowance) AllowsNone() bool {
	return a.mask == 0
}

// Union returns the Allowance permitting every class permitted by either
// operand.
func (a Allowance) Union(other Allowance) Allowance {
	return Allowance{mask: a.mask | other.mask}
}

// Complement returns the Allowance permitting exactly the classes this one
// forbids.
func (a Allowance) Complement() Allowance {
	return Allowance{mask: ^a.mask & allowanceMaskAll}
}

// IsSupersetOf reports whether every class permitted by other is also
// permitted by a.
func (a Allowance) IsSupersetOf(other Allowance) bool {
	return a.mask&other.mask == other.mask
}

// Equal reports mask equality.
func (a Allowance) Equal(other Allowance) bool {
	return a.mask == other.mask
}

// AllowString renders the permitted classes as a SUMO allow attribute value.
func (a Allowance) AllowString() string {
	if a.AllowsAll() {
		return "all"
	}
	return a.classList(true)
}

// DisallowString renders the forbidden classes as a SUMO disallow attribute
// value.
func (a Allowance) DisallowString() string {
	if a.AllowsNone() {
		return "all"
	}
	return a.classList(false)
}

func (a Allowance) classList(allowed bool) string {
	names := make([]string, 0, numVehicleClasses)
	for i := 0; i < numVehicleClasses; i++ {
		if a.Allows(VehicleClass(i)) == allowed {
			names = append(names, vehicleClassNames[i])
		}
	}
	return strings.Join(names, " ")
}

// allowsExclusively reports whether the mask permits exactly the one class.
func (a Allowance) allowsExclusively(class VehicleClass) bool {
	return a.mask == 1<<class
}

// allowsOnlyRailOrShip reports whether the permission set is non-empty and
// restricted to rail classes, trams and ships. Such lanes carry no painted
// road markings.
func (a Allowance) allowsOnlyRailOrShip() bool {
	railShipMask := uint32(1<<CLASS_TRAM | 1<<CLASS_RAIL_URBAN | 1<<CLASS_RAIL |
		1<<CLASS_RAIL_ELECTRIC | 1<<CLASS_RAIL_FAST | 1<<CLASS_SHIP)
	return a.mask != 0 && a.mask&^railShipMask == 0
}
