package worker

// Info is the contact record for one building.
//
// Every field except BldgID is optional and serialises as null when absent.
type Info struct {
	BldgID       string  `json:"bldg_id"`
	Name         *string `json:"name"`
	Driver       *string `json:"driver"`
	DriverID     *string `json:"driver_id"`
	DriverPhone  *string `json:"driver_phone"`
	Manager      *string `json:"manager"`
	ManagerID    *string `json:"manager_id"`
	ManagerPhone *string `json:"manager_phone"`
}

// fileRecord is one element of the worker file as written on disk.
//
// Files exported by the previous system use camelCase for the ID and phone
// fields. Both spellings are read; snake_case wins when a record has both.
type fileRecord struct {
	BldgID       flexString `json:"bldg_id"`
	Name         flexString `json:"name"`
	Driver       flexString `json:"driver"`
	DriverID     flexString `json:"driver_id"`
	DriverPhone  flexString `json:"driver_phone"`
	Manager      flexString `json:"manager"`
	ManagerID    flexString `json:"manager_id"`
	ManagerPhone flexString `json:"manager_phone"`

	LegacyDriverID     flexString `json:"driverId"`
	LegacyDriverPhone  flexString `json:"driverPhone"`
	LegacyManagerID    flexString `json:"managerId"`
	LegacyManagerPhone flexString `json:"managerPhone"`
}

// info converts the on-disk record to an Info.
func (r fileRecord) info() Info {
	var id string
	if r.BldgID.v != nil {
		id = *r.BldgID.v
	}
	return Info{
		BldgID:       id,
		Name:         r.Name.v,
		Driver:       r.Driver.v,
		DriverID:     firstSet(r.DriverID, r.LegacyDriverID),
		DriverPhone:  firstSet(r.DriverPhone, r.LegacyDriverPhone),
		Manager:      r.Manager.v,
		ManagerID:    firstSet(r.ManagerID, r.LegacyManagerID),
		ManagerPhone: firstSet(r.ManagerPhone, r.LegacyManagerPhone),
	}
}

func firstSet(values ...flexString) *string {
	for _, f := range values {
		if f.v != nil {
			return f.v
		}
	}
	return nil
}
