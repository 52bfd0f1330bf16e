package catalog

import (
	"fmt"
	"sync/atomic"

	"github.com/vladislavdragonenkov/basket/internal/domain"
)

// Generation — номер загрузки. Ответ применим, только если за время
// запроса не началась более новая загрузка.
type Generation uint64

// Generations выдаёт монотонно растущие номера загрузок.
type Generations struct {
	current atomic.Uint64
}

// Next начинает новую загрузку; все ранее выданные номера устаревают.
func (g *Generations) Next() Generation {
	return Generation(g.current.Add(1))
}

// IsCurrent сообщает, что номер всё ещё последний выданный.
func (g *Generations) IsCurrent(gen Generation) bool {
	return Generation(g.current.Load()) == gen
}

// Check возвращает ErrStaleGeneration, если gen уже вытеснен более новой загрузкой.
func (g *Generations) Check(gen Generation) error {
	if current := g.Current(); current != gen {
		return fmt.Errorf("generation %d superseded by %d: %w", gen, current, domain.ErrStaleGeneration)
	}
	return nil
}

// Current возвращает последний выданный номер (0, если загрузок не было).
func (g *Generations) Current() Generation {
	return Generation(g.current.Load())
}
