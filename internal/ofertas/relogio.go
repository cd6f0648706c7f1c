package ofertas

import "time"

// fusoBrasilia é o deslocamento fixo UTC-3 usado por todo o filtro de
// vigência. O deslocamento é fixo de propósito: não há horário de verão na
// região atendida e o comportamento não deve depender de base de fusos.
var fusoBrasilia = time.FixedZone("UTC-3", -3*60*60)

// Relogio é uma abstração mínima sobre a hora atual, para tornar o filtro
// testável.
type Relogio interface {
	Now() time.Time
}

// RelogioReal devolve a hora real do sistema.
type RelogioReal struct{}

func (RelogioReal) Now() time.Time {
	return time.Now()
}

// RelogioFixo é um relógio controlável para testes.
type RelogioFixo struct {
	Hora time.Time
}

func (r RelogioFixo) Now() time.Time {
	return r.Hora
}

// AgoraBrasilia devolve a hora de referência do filtro: a hora atual do
// relógio convertida para o deslocamento fixo UTC-3.
func AgoraBrasilia(relogio Relogio) time.Time {
	return relogio.Now().In(fusoBrasilia)
}
