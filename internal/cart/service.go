package cart

// ServiceInterface is the subset of cart operations other packages depend on.
type ServiceInterface interface {
	GetCart(userID int) ([]Item, error)
	SetItem(userID int, productID int, qty int) ([]Item, error)
	ClearCart(userID int) error
}

// Service orchestrates cart operations.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetCart(userID int) ([]Item, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.Get(userID)
}

// SetItem stores the desired quantity for a product. Zero or negative
// quantities remove the row.
func (s *Service) SetItem(userID int, productID int, qty int) ([]Item, error) {
	if userID <= 0 || productID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.Set(userID, productID, qty)
}

// ClearCart empties a single user's cart, never anyone else's.
func (s *Service) ClearCart(userID int) error {
	if userID <= 0 {
		return ErrNotFound
	}
	return s.repo.Clear(userID)
}
