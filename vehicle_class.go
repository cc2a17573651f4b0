package sumonetvis

import (
	"github.com/pkg/errors"
)

// VehicleClass is one entry of the closed SUMO vehicle class enumeration.
// The numeric value doubles as the bit position inside an Allowance mask.
type VehicleClass uint8

const (
	CLASS_PRIVATE = VehicleClass(iota)
	CLASS_EMERGENCY
	CLASS_AUTHORITY
	CLASS_ARMY
	CLASS_VIP
	CLASS_PEDESTRIAN
	CLASS_PASSENGER
	CLASS_HOV
	CLASS_TAXI
	CLASS_BUS
	CLASS_COACH
	CLASS_DELIVERY
	CLASS_TRUCK
	CLASS_TRAILER
	CLASS_MOTORCYCLE
	CLASS_MOPED
	CLASS_BICYCLE
	CLASS_EVEHICLE
	CLASS_TRAM
	CLASS_RAIL_URBAN
	CLASS_RAIL
	CLASS_RAIL_ELECTRIC
	CLASS_RAIL_FAST
	CLASS_SHIP
	CLASS_CUSTOM1
	CLASS_CUSTOM2
	numVehicleClasses = int(iota)
)

var vehicleClassNames = [numVehicleClasses]string{
	"private", "emergency", "authority", "army", "vip", "pedestrian",
	"passenger", "hov", "taxi", "bus", "coach", "delivery", "truck",
	"trailer", "motorcycle", "moped", "bicycle", "evehicle", "tram",
	"rail_urban", "rail", "rail_electric", "rail_fast", "ship", "custom1",
	"custom2",
}

var vehicleClassByName = func() map[string]VehicleClass {
	m := make(map[string]VehicleClass, numVehicleClasses)
	for i, name := range vehicleClassNames {
		m[name] = VehicleClass(i)
	}
	return m
}()

func (iotaIdx VehicleClass) String() string {
	return vehicleClassNames[iotaIdx]
}

// VehicleClassFromString maps a SUMO vehicle class name to its enum value.
func VehicleClassFromString(name string) (VehicleClass, error) {
	class, ok := vehicleClassByName[name]
	if !ok {
		return 0, errors.Wrapf(ErrInvalidVehicleClass, "'%s'", name)
	}
	return class, nil
}
