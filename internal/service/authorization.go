package service

import (
	"context"

	"github.com/janis-commerce/app-tracking-shift-sub000/internal/storage"
)

// CheckStaffMSAuthorization asks the staff service whether shifts and
// worklogs are enabled. Only an explicit true authorizes.
func (s *ShiftService) CheckStaffMSAuthorization(ctx context.Context) (bool, error) {
	ok, err := s.checkStaffMSAuthorization(ctx)
	if err != nil {
		return false, s.fail("staff.check_authorization", err)
	}
	return ok, nil
}

func (s *ShiftService) checkStaffMSAuthorization(ctx context.Context) (bool, error) {
	setting, err := s.api.GetGlobalSetting(ctx)
	if err != nil {
		return false, err
	}
	return setting != nil && setting.EnabledShiftAndWorkLog != nil && *setting.EnabledShiftAndWorkLog, nil
}

type staffAuthorization struct {
	IsAuthorized bool `json:"isAuthorized"`
}

// authorize gates every lifecycle operation on the cached staff flag,
// refreshing it from the staff service once expired
func (s *ShiftService) authorize(ctx context.Context) error {
	var cached staffAuthorization
	found, err := storage.GetExpiring(s.kv, storage.KeyStaffAuthorization, &cached, s.now())
	if err != nil {
		return err
	}
	if found {
		if !cached.IsAuthorized {
			return ErrStaffAuthorizationRequired
		}
		return nil
	}

	ok, err := s.checkStaffMSAuthorization(ctx)
	if err != nil {
		return err
	}
	if err := storage.SetExpiring(s.kv, storage.KeyStaffAuthorization, staffAuthorization{IsAuthorized: ok}, s.ttl.Authorization, s.now()); err != nil {
		return err
	}
	if !ok {
		return ErrStaffAuthorizationRequired
	}
	return nil
}
