package db

import (
	"fmt"

	"heat/internal/domain/model"

	"gorm.io/gorm"
)

// plate_code: A-000 .. Z-999 を順に振る（一周したら戻る）
const plateCodeSQL = `
CREATE SEQUENCE IF NOT EXISTS plate_code_seq MINVALUE 0 START 0 MAXVALUE 25999 CYCLE;

CREATE OR REPLACE FUNCTION generate_plate_code() RETURNS varchar AS $$
DECLARE
	n bigint := nextval('plate_code_seq');
BEGIN
	RETURN chr(65 + (n / 1000)::int) || '-' || lpad((n % 1000)::text, 3, '0');
END;
$$ LANGUAGE plpgsql;
`

// orders の status 更新を order_changes チャネルへ流す
const notifySQL = `
CREATE OR REPLACE FUNCTION notify_order_change() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify('order_changes', json_build_object(
		'id', NEW.id,
		'user_id', NEW.user_id,
		'plate_code', NEW.plate_code,
		'status', NEW.status,
		'updated_at', NEW.updated_at
	)::text);
	RETURN NEW;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS orders_notify_status ON orders;
CREATE TRIGGER orders_notify_status
	AFTER UPDATE OF status ON orders
	FOR EACH ROW
	WHEN (OLD.status IS DISTINCT FROM NEW.status)
	EXECUTE FUNCTION notify_order_change();
`

// Migrate はテーブルと採番関数・通知トリガーを用意する
func Migrate(gdb *gorm.DB) error {
	if err := gdb.Exec(plateCodeSQL).Error; err != nil {
		return fmt.Errorf("plate code function: %w", err)
	}

	if err := gdb.AutoMigrate(
		&model.Profile{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := gdb.Exec(notifySQL).Error; err != nil {
		return fmt.Errorf("notify trigger: %w", err)
	}
	return nil
}
