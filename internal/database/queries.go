package database

// User queries
const (
	InsertUserSQL = `
		INSERT INTO users (nickname, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	GetUserByNicknameSQL = `
		SELECT id, nickname, email, password_hash, role, created_at
		FROM users WHERE nickname = $1`

	GetUserByIDSQL = `
		SELECT id, nickname, email, password_hash, role, created_at
		FROM users WHERE id = $1`

	ListUsersSQL = `
		SELECT id, nickname, email, password_hash, role, created_at
		FROM users ORDER BY id ASC`
)

// Menu queries
const (
	InsertMenuItemSQL = `
		INSERT INTO menu (name, weight, ingredients, description, price, active, file_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	ListActiveMenuSQL = `
		SELECT id, name, weight, ingredients, description, price::text, active, file_name
		FROM menu WHERE active ORDER BY id ASC`

	ListAllMenuSQL = `
		SELECT id, name, weight, ingredients, description, price::text, active, file_name
		FROM menu ORDER BY id ASC`

	ListHighlightsSQL = `
		SELECT id, name, weight, ingredients, description, price::text, active, file_name
		FROM menu WHERE active ORDER BY price ASC LIMIT $1`

	GetActiveMenuItemByNameSQL = `
		SELECT id, name, weight, ingredients, description, price::text, active, file_name
		FROM menu WHERE active AND name = $1`

	GetMenuItemByIDSQL = `
		SELECT id, name, weight, ingredients, description, price::text, active, file_name
		FROM menu WHERE id = $1`

	GetMenuPricesByNamesSQL = `
		SELECT name, price::text FROM menu WHERE name = ANY($1)`

	ToggleMenuItemActiveSQL = `
		UPDATE menu SET active = NOT active WHERE id = $1`

	DeleteMenuItemSQL = `
		DELETE FROM menu WHERE id = $1`
)

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (order_list, order_time, total_cost, customer_name,
			customer_phone, customer_address, payment_method, delivery_notes, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	GetOrderByIDSQL = `
		SELECT id, order_list, order_time, total_cost::text, customer_name,
			customer_phone, customer_address, payment_method, delivery_notes, user_id
		FROM orders WHERE id = $1`

	ListOrdersByUserSQL = `
		SELECT id, order_list, order_time, total_cost::text, customer_name,
			customer_phone, customer_address, payment_method, delivery_notes, user_id
		FROM orders WHERE user_id = $1 ORDER BY order_time DESC`

	ListAllOrdersSQL = `
		SELECT o.id, o.order_list, o.order_time, o.total_cost::text, o.customer_name,
			o.customer_phone, o.customer_address, o.payment_method, o.delivery_notes,
			o.user_id, u.nickname
		FROM orders o JOIN users u ON u.id = o.user_id
		ORDER BY o.order_time DESC`

	DeleteOrderSQL = `
		DELETE FROM orders WHERE id = $1`

	DeleteOrderForUserSQL = `
		DELETE FROM orders WHERE id = $1 AND user_id = $2`
)

// Reservation queries
const (
	AcquireTableTypeLockSQL = `
		SELECT pg_advisory_xact_lock(hashtext('reservation:' || $1))`

	CountReservationsByTypeSQL = `
		SELECT COUNT(*) FROM reservation WHERE table_type = $1`

	CountReservationsByUserSQL = `
		SELECT COUNT(*) FROM reservation WHERE user_id = $1`

	InsertReservationSQL = `
		INSERT INTO reservation (table_type, time_start, guest_name, guest_phone,
			guest_email, guest_notes, guest_address, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	ListReservationsByUserSQL = `
		SELECT id, table_type, time_start, guest_name, guest_phone, guest_email,
			guest_notes, guest_address, user_id
		FROM reservation WHERE user_id = $1 ORDER BY time_start DESC`

	ListAllReservationsSQL = `
		SELECT r.id, r.table_type, r.time_start, r.guest_name, r.guest_phone,
			r.guest_email, r.guest_notes, r.guest_address, r.user_id, u.nickname
		FROM reservation r JOIN users u ON u.id = r.user_id
		ORDER BY r.time_start ASC`

	DeleteReservationSQL = `
		DELETE FROM reservation WHERE id = $1`

	DeleteReservationForUserSQL = `
		DELETE FROM reservation WHERE id = $1 AND user_id = $2`
)
