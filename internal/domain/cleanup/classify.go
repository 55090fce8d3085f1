package cleanup

import (
	"github.com/gotd/td/tg"
)

// Dialog — открытый диалог аккаунта. Entity — готовый InputPeer с access_hash,
// по которому выполняются дальнейшие операции.
type Dialog struct {
	Key       PeerKey
	Name      string
	IsChannel bool
	IsGroup   bool
	Entity    tg.InputPeerClass
}

// IsPrivate — личный чат: не канал и не группа.
func (d Dialog) IsPrivate() bool {
	return !d.IsChannel && !d.IsGroup
}

// Category — тип удаляемого диалога для плана и выбора операции.
type Category string

const (
	CategoryPrivate Category = "Private"
	CategoryChannel Category = "Channel"
	CategoryGroup   Category = "Group"
)

// Removal связывает диалог с его категорией удаления.
type Removal struct {
	Dialog   Dialog
	Category Category
}

// Name возвращает отображаемое имя диалога.
func (r Removal) Name() string {
	return r.Dialog.Name
}

// categorize определяет метку: Private, затем Channel, иначе Group.
// Мегагруппа формально и канал, и группа, поэтому получает метку Channel.
func categorize(d Dialog) Category {
	switch {
	case d.IsPrivate():
		return CategoryPrivate
	case d.IsChannel:
		return CategoryChannel
	default:
		return CategoryGroup
	}
}

// Plan — результат классификации. Все срезы сохраняют порядок, в котором
// сервер вернул диалоги.
type Plan struct {
	Kept   []Dialog
	Remove []Removal
	Leave  []Removal // каналы и группы
	Delete []Removal // личные чаты
}

// Classify раскладывает диалоги по keep-set. Keep-set должен быть вычислен
// целиком до вызова; каждый диалог попадает ровно в одну корзину.
func Classify(dialogs []Dialog, keep KeepSet) Plan {
	var plan Plan
	for _, d := range dialogs {
		if keep.Has(d.Key) {
			plan.Kept = append(plan.Kept, d)
			continue
		}
		plan.Remove = append(plan.Remove, Removal{Dialog: d, Category: categorize(d)})
	}

	for _, r := range plan.Remove {
		if r.Dialog.IsChannel || r.Dialog.IsGroup {
			plan.Leave = append(plan.Leave, r)
		} else {
			plan.Delete = append(plan.Delete, r)
		}
	}
	return plan
}
