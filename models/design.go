package models

import "strings"

// TotalDesigns число комбинированных дизайнов в турнире.
const TotalDesigns = 32

const designLetters = 5

// Design один комбинированный UI-дизайн. Имя составлено из вариантов A/B по
// компонентам, нумерация идёт в алфавитном порядке имён.
type Design struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

var designs = buildDesigns()

func buildDesigns() []Design {
	list := make([]Design, 0, TotalDesigns)
	for i := 0; i < TotalDesigns; i++ {
		var b strings.Builder
		for pos := designLetters - 1; pos >= 0; pos-- {
			if i&(1<<pos) == 0 {
				b.WriteByte('A')
			} else {
				b.WriteByte('B')
			}
		}
		name := b.String()
		list = append(list, Design{
			ID:    i + 1,
			Name:  name,
			Image: "/Designs/Combined/" + name + ".png",
		})
	}
	return list
}

// Designs возвращает весь каталог по порядку ID.
func Designs() []Design {
	out := make([]Design, len(designs))
	copy(out, designs)
	return out
}

func DesignByID(id int) (Design, bool) {
	if id < 1 || id > len(designs) {
		return Design{}, false
	}
	return designs[id-1], true
}

// DesignName возвращает "" для неизвестных id.
func DesignName(id int) string {
	d, _ := DesignByID(id)
	return d.Name
}

// ComponentType один из пяти компонентов первого этапа.
type ComponentType string

const (
	ComponentAddButton    ComponentType = "addButton"
	ComponentBackground   ComponentType = "background"
	ComponentCheckStyle   ComponentType = "checkStyle"
	ComponentCheckboxType ComponentType = "checkboxType"
	ComponentTitle        ComponentType = "title"
)

type Component struct {
	Type        ComponentType `json:"type"`
	DisplayName string        `json:"display_name"`
	ImageA      string        `json:"image_a"`
	ImageB      string        `json:"image_b"`
}

var components = []Component{
	newComponent(ComponentAddButton, "Add Button"),
	newComponent(ComponentBackground, "Background"),
	newComponent(ComponentCheckStyle, "Check Style"),
	newComponent(ComponentCheckboxType, "Checkbox Type"),
	newComponent(ComponentTitle, "Title"),
}

func newComponent(t ComponentType, displayName string) Component {
	return Component{
		Type:        t,
		DisplayName: displayName,
		ImageA:      "/Designs/Components/" + displayName + " A.png",
		ImageB:      "/Designs/Components/" + displayName + " B.png",
	}
}

// Components возвращает компоненты первого этапа в порядке показа.
func Components() []Component {
	out := make([]Component, len(components))
	copy(out, components)
	return out
}

func (t ComponentType) Valid() bool {
	for _, c := range components {
		if c.Type == t {
			return true
		}
	}
	return false
}
