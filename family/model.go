package family

import (
	"encoding/json"
	"fmt"
)

// Family is one refresh-token rotation chain, tied to a single login
// session on one device. The ledger exclusively owns these records; no
// other component mutates them.
//
// The stored JSON matches the backing-store schema: the family ID is
// the key, not part of the value.
type Family struct {
	FamilyID      string `json:"-"`
	UserID        string `json:"userId"`
	DeviceID      string `json:"deviceId"`
	CurrentJTI    string `json:"currentJti"`
	PreviousJTI   string `json:"previousJti,omitempty"`
	ChainLength   int    `json:"chainLength"`
	CreatedAt     int64  `json:"createdAt"`
	LastRotatedAt int64  `json:"lastRotatedAt"`
}

// IsMember reports whether jti is the current or the immediately prior
// refresh token of this family. The "previous" allowance tolerates
// exactly one in-flight duplicate rotation.
func (f *Family) IsMember(jti string) bool {
	if f == nil || jti == "" {
		return false
	}
	return jti == f.CurrentJTI || (f.PreviousJTI != "" && jti == f.PreviousJTI)
}

func encode(f *Family) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return data, nil
}

func decode(data []byte) (*Family, error) {
	var f Family
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &f, nil
}
