package brackets

// Candidate идентифицирует дизайн, участвующий в турнире.
type Candidate int

// PairingGenerator разбивает кандидатов на пары одного раунда.
//
// Реализация возвращает ⌈n/2⌉ матчей, каждый кандидат встречается ровно один
// раз, ID матчей уникальны по всем вызовам в рамках одного турнира. Лишний
// кандидат возвращается как уже разрешённый bye.
type PairingGenerator interface {
	Pair(candidates []Candidate) ([]Match, error)
}
