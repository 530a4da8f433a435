package refund

import (
	"time"

	"github.com/warp/refund-engine/generic"
)

// StandardTOSCutoff is the last calendar day of the old Terms of Service.
// US records write it 1/2/2020, European records 2/1/2020.
func StandardTOSCutoff() generic.CivilDate {
	return generic.NewCivilDate(2020, time.January, 2)
}

// TOSClassifier splits customers into old and new TOS by sign-up date.
type TOSClassifier struct {
	Cutoff generic.CivilDate
}

// IsNewTOS reports whether signUp is strictly later than midnight of the
// cutoff day in zone. Signing up on the cutoff instant is old TOS.
func (c TOSClassifier) IsNewTOS(signUp time.Time, zone generic.Zone) bool {
	return signUp.After(c.Cutoff.In(zone))
}

// Classify parses a sign-up date with the zone's convention and classifies it.
func (c TOSClassifier) Classify(signUpDate string, zone generic.Zone) (TOSVersion, error) {
	signUp, err := generic.ParseDate(signUpDate, zone.Region.Convention(), zone)
	if err != nil {
		return TOSUnknown, err
	}
	if c.IsNewTOS(signUp, zone) {
		return TOSNew, nil
	}
	return TOSOld, nil
}
