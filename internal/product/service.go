package product

// ServiceInterface is implemented by Service; other packages depend on this
// so tests can substitute stubs.
type ServiceInterface interface {
	List() ([]Product, error)
	GetByID(id int) (Product, error)
	Create(p Product) (Product, error)
	Update(id int, p Product) (Product, error)
	Delete(id int) error
	DecrementStock(id int, qty int) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List() ([]Product, error) {
	return s.repo.List()
}

func (s *Service) GetByID(id int) (Product, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Create(p Product) (Product, error) {
	return s.repo.Create(p)
}

func (s *Service) Update(id int, p Product) (Product, error) {
	return s.repo.Update(id, p)
}

func (s *Service) Delete(id int) error {
	return s.repo.Delete(id)
}

// DecrementStock lowers stock by qty, never below zero. Negative and zero
// quantities are ignored.
func (s *Service) DecrementStock(id int, qty int) error {
	if qty <= 0 {
		return nil
	}
	return s.repo.DecrementStock(id, qty)
}
