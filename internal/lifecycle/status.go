// Package lifecycle は注文ステータスの状態遷移を扱う。
//
//	pending → cooking → ready → delivered → paid
//
// cancelled は前進では到達せず、Cancel でのみ遷移する。paid / cancelled は終端。
package lifecycle

import "heat/internal/domain/model"

var nextStatus = map[model.OrderStatus]model.OrderStatus{
	model.OrderStatusPending:   model.OrderStatusCooking,
	model.OrderStatusCooking:   model.OrderStatusReady,
	model.OrderStatusReady:     model.OrderStatusDelivered,
	model.OrderStatusDelivered: model.OrderStatusPaid,
}

var labels = map[model.OrderStatus]string{
	model.OrderStatusPending:   "Pendiente",
	model.OrderStatusCooking:   "Cocinando",
	model.OrderStatusReady:     "Listo",
	model.OrderStatusDelivered: "Entregado",
	model.OrderStatusPaid:      "Pagado",
	model.OrderStatusCancelled: "Cancelado",
}

// 次のステータスへ進めるボタンの文言（遷移先で引く）
var actionLabels = map[model.OrderStatus]string{
	model.OrderStatusCooking:   "Aceptar",
	model.OrderStatusReady:     "Listo",
	model.OrderStatusDelivered: "Entregar",
	model.OrderStatusPaid:      "Cobrar",
}

// Next は前進先を返す。終端・未知のステータスは false。
func Next(s model.OrderStatus) (model.OrderStatus, bool) {
	n, ok := nextStatus[s]
	return n, ok
}

// Label は表示用のステータス名。未知のステータスはそのまま返す。
func Label(s model.OrderStatus) string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// ActionLabel は現在のステータスから進めるときのボタン文言。終端なら空。
func ActionLabel(current model.OrderStatus) string {
	n, ok := Next(current)
	if !ok {
		return ""
	}
	return actionLabels[n]
}

func IsTerminal(s model.OrderStatus) bool {
	return s == model.OrderStatusPaid || s == model.OrderStatusCancelled
}
