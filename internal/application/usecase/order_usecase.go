package usecase

import (
	"context"
	"path"

	"github.com/jhoicas/trek-api/internal/application/contract"
	"github.com/jhoicas/trek-api/internal/application/dto"
	"github.com/jhoicas/trek-api/internal/domain"
	"github.com/jhoicas/trek-api/internal/domain/entity"
	"github.com/jhoicas/trek-api/internal/domain/repository"
)

// Requester quién consulta: los empleados solo ven sus propios pedidos.
type Requester struct {
	UserID    string
	CompanyID string
	Role      string
}

// ContractFile documento descargable.
type ContractFile struct {
	FileName string
	Content  []byte
}

// OrderUseCase consultas de pedidos y descarga del aditivo.
type OrderUseCase struct {
	repo repository.OrderRepository
	docs *contract.DocumentService
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(repo repository.OrderRepository, docs *contract.DocumentService) *OrderUseCase {
	return &OrderUseCase{repo: repo, docs: docs}
}

// ListMine pedidos del usuario autenticado.
func (uc *OrderUseCase) ListMine(ctx context.Context, userID string) (*dto.OrderListResponse, error) {
	return uc.list(ctx, repository.OrderFilter{UserID: userID})
}

// List pedidos filtrados por estado y empresa (panel admin).
func (uc *OrderUseCase) List(ctx context.Context, status, companyID string, limit, offset int) (*dto.OrderListResponse, error) {
	f := repository.OrderFilter{CompanyID: companyID, Limit: limit, Offset: offset}
	if status != "" {
		f.Statuses = []string{status}
	}
	return uc.list(ctx, f)
}

func (uc *OrderUseCase) list(ctx context.Context, f repository.OrderFilter) (*dto.OrderListResponse, error) {
	list, err := uc.repo.ListDetails(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, d := range list {
		items = append(items, contract.ToOrderDetailResponse(d))
	}
	return &dto.OrderListResponse{Items: items, Page: dto.PageResponse{Limit: f.Limit, Offset: f.Offset}}, nil
}

// ContractDocument devuelve la revisión vigente del aditivo del pedido.
func (uc *OrderUseCase) ContractDocument(ctx context.Context, who Requester, orderID string) (*ContractFile, error) {
	o, err := uc.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	// no revelar la existencia de pedidos ajenos
	switch who.Role {
	case entity.RoleEmployee:
		if o.UserID != who.UserID {
			return nil, domain.ErrNotFound
		}
	case entity.RoleHR:
		if o.CompanyID != who.CompanyID {
			return nil, domain.ErrNotFound
		}
	}
	if o.ContractURL == "" {
		return nil, domain.ErrNotFound
	}
	content, err := uc.docs.Open(ctx, o.ContractURL)
	if err != nil {
		return nil, err
	}
	return &ContractFile{FileName: path.Base(o.ContractURL), Content: content}, nil
}
