package schedule

// ===============================
// Regras de agendamento
// ===============================

// RuleConfig concentra as regras de colisão que antes ficavam
// espalhadas em constantes por tela (buffer 15 em uma, horário 8–20
// em outra). Uma única origem, injetada em todos os pontos de uso.
type RuleConfig struct {
	// Intervalo mínimo, em minutos, entre atendimentos do mesmo barbeiro.
	BufferMinutes int

	// Janela de funcionamento da barbearia (horas cheias).
	WorkDayStart int
	WorkDayEnd   int

	// Quando true, a análise considera agenda e expediente do barbeiro.
	CheckBarberAvailability bool

	// Quando true, atendimentos encostados (fim == início) não violam buffer.
	AllowAdjacent bool
}

func DefaultRules() RuleConfig {
	return RuleConfig{
		BufferMinutes:           15,
		WorkDayStart:            8,
		WorkDayEnd:              20,
		CheckBarberAvailability: true,
		AllowAdjacent:           true,
	}
}

// RiskThresholdDefault é o limite de risco acima do qual a remarcação
// exige decisão do usuário. Política, não lei: configurável por barbearia.
const RiskThresholdDefault = 30
