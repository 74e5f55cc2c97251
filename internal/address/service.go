package address

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service handles business logic for addresses.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) List(userID string) ([]Address, error) {
	return s.repo.List(userID)
}

func (s *Service) Create(userID string, a Address) (Address, error) {
	a.ID = uuid.NewString()
	a.UserID = userID
	a.CreatedAt = s.now().UTC()
	trimAddress(&a)
	return s.repo.Create(a)
}

func (s *Service) Update(userID, id string, a Address) (Address, error) {
	a.ID = id
	a.UserID = userID
	trimAddress(&a)
	return s.repo.Update(a)
}

func (s *Service) Delete(userID, id string) error {
	return s.repo.Delete(userID, id)
}

func trimAddress(a *Address) {
	a.FullName = strings.TrimSpace(a.FullName)
	a.PhoneNumber = strings.TrimSpace(a.PhoneNumber)
	a.Pincode = strings.TrimSpace(a.Pincode)
	a.Area = strings.TrimSpace(a.Area)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
}
