package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/trek-api/internal/domain"
	"github.com/jhoicas/trek-api/internal/domain/entity"
	"github.com/jhoicas/trek-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación del puerto OrderRepository sobre PostgreSQL.
// La dirección de entrega se guarda como JSONB; pgx la serializa desde el struct.
type OrderRepo struct {
	db Querier
}

// NewOrderRepository construye el adaptador. db puede ser el pool o una pgx.Tx.
func NewOrderRepository(db Querier) *OrderRepo {
	return &OrderRepo{db: db}
}

const orderColumns = `o.id, o.user_id, o.product_id, COALESCE(o.company_id::text, ''), o.status, o.signed_at,
	o.delivery_address, o.contract_url, o.contract_revision, o.imei,
	o.contact_name, o.contact_email, o.contact_phone,
	o.acceptance_id, o.accepted_at, o.acceptance_ip, o.dispatched_at, o.created_at, o.updated_at`

const orderDetailJoin = `
	FROM orders o
	JOIN user_profiles u ON u.id = o.user_id
	JOIN products p ON p.id = o.product_id
	LEFT JOIN companies c ON c.id = o.company_id`

const orderDetailColumns = orderColumns + `,
	u.name, u.cpf, u.email, COALESCE(c.name, ''), p.brand, p.model, p.monthly_price, p.insurance_price`

// Create persiste el pedido. Un acceptance_id repetido devuelve domain.ErrDuplicate.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `
		INSERT INTO orders (
			id, user_id, product_id, company_id, status, signed_at,
			delivery_address, contract_url, contract_revision, imei,
			contact_name, contact_email, contact_phone,
			acceptance_id, accepted_at, acceptance_ip, dispatched_at, created_at, updated_at
		) VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.db.Exec(ctx, query,
		o.ID, o.UserID, o.ProductID, o.CompanyID, o.Status, o.SignedAt,
		o.DeliveryAddress, o.ContractURL, o.ContractRevision, o.IMEI,
		o.ContactName, o.ContactEmail, o.ContactPhone,
		o.AcceptanceID, o.AcceptedAt, o.AcceptanceIP, o.DispatchedAt, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID obtiene un pedido por ID.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`
	o, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// GetByAcceptanceID resuelve reenvíos del mismo aceite.
func (r *OrderRepo) GetByAcceptanceID(ctx context.Context, acceptanceID string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.acceptance_id = $1`
	o, err := scanOrder(r.db.QueryRow(ctx, query, acceptanceID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order by acceptance: %w", err)
	}
	return o, nil
}

// GetDetail obtiene el pedido con los datos de empleado, empresa y producto.
func (r *OrderRepo) GetDetail(ctx context.Context, id string) (*entity.OrderDetail, error) {
	query := `SELECT ` + orderDetailColumns + orderDetailJoin + ` WHERE o.id = $1`
	d, err := scanOrderDetail(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order detail: %w", err)
	}
	return d, nil
}

// ListDetails lista pedidos con join según el filtro, del más reciente al más antiguo.
func (r *OrderRepo) ListDetails(ctx context.Context, f repository.OrderFilter) ([]*entity.OrderDetail, error) {
	var (
		conds []string
		args  []any
	)
	if len(f.Statuses) > 0 {
		args = append(args, f.Statuses)
		conds = append(conds, fmt.Sprintf("o.status = ANY($%d)", len(args)))
	}
	if f.UserID != "" {
		args = append(args, f.UserID)
		conds = append(conds, fmt.Sprintf("o.user_id = $%d", len(args)))
	}
	if f.CompanyID != "" {
		args = append(args, f.CompanyID)
		conds = append(conds, fmt.Sprintf("o.company_id = $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString(`SELECT `)
	b.WriteString(orderDetailColumns)
	b.WriteString(orderDetailJoin)
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY o.signed_at DESC")
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		fmt.Fprintf(&b, " LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var list []*entity.OrderDetail
	for rows.Next() {
		d, err := scanOrderDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// TransitionStatus aplica el cambio solo si el estado actual coincide (compare-and-swap).
// El IMEI vacío conserva el valor existente; dispatched_at se fija al llegar a dispatched.
func (r *OrderRepo) TransitionStatus(ctx context.Context, c repository.StatusChange) (bool, error) {
	query := `
		UPDATE orders SET
			status = $3,
			imei = COALESCE(NULLIF($4, ''), imei),
			dispatched_at = CASE WHEN $3 = 'dispatched' THEN now() ELSE dispatched_at END,
			updated_at = now()
		WHERE id = $1 AND status = $2`
	cmd, err := r.db.Exec(ctx, query, c.OrderID, c.FromStatus, c.ToStatus, c.IMEI)
	if err != nil {
		return false, fmt.Errorf("transition order: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// SetContract registra la clave del documento vigente y su revisión.
func (r *OrderRepo) SetContract(ctx context.Context, orderID, contractURL string, revision int) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE orders SET contract_url = $2, contract_revision = $3, updated_at = now() WHERE id = $1`,
		orderID, contractURL, revision)
	if err != nil {
		return fmt.Errorf("set order contract: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func orderDest(o *entity.Order) []any {
	return []any{
		&o.ID, &o.UserID, &o.ProductID, &o.CompanyID, &o.Status, &o.SignedAt,
		&o.DeliveryAddress, &o.ContractURL, &o.ContractRevision, &o.IMEI,
		&o.ContactName, &o.ContactEmail, &o.ContactPhone,
		&o.AcceptanceID, &o.AcceptedAt, &o.AcceptanceIP, &o.DispatchedAt, &o.CreatedAt, &o.UpdatedAt,
	}
}

func scanOrder(row rowScanner) (*entity.Order, error) {
	var o entity.Order
	if err := row.Scan(orderDest(&o)...); err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOrderDetail(row rowScanner) (*entity.OrderDetail, error) {
	var d entity.OrderDetail
	dest := append(orderDest(&d.Order),
		&d.UserName, &d.UserCPF, &d.UserEmail, &d.CompanyName,
		&d.ProductBrand, &d.ProductModel, &d.ProductMonthly, &d.ProductInsurance,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &d, nil
}
