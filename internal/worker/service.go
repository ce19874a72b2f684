package worker

// Service answers building contact lookups for the HTTP layer.
type Service struct {
	dir *Directory
}

// NewService creates a Service over dir. A nil dir behaves as empty.
func NewService(dir *Directory) *Service {
	return &Service{dir: dir}
}

// GetOne returns the contact record for bldgID, if any.
func (s *Service) GetOne(bldgID string) (Info, bool) {
	return s.dir.Get(bldgID)
}

// Size returns the number of buildings loaded.
func (s *Service) Size() int {
	return s.dir.Len()
}
