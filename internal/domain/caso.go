package domain

import "time"

// Caso representa um caso pericial com os dados da vítima.
// IDCaso é o identificador sequencial exposto na API, distinto do ID interno.
type Caso struct {
	ID                     string     `json:"id"`
	IDCaso                 int64      `json:"id_caso"`
	TituloCaso             string     `json:"titulo_caso"`
	ResponsavelCaso        string     `json:"responsavel_caso"`
	ProcessoCaso           string     `json:"processo_caso"`
	DataAberturaCaso       time.Time  `json:"data_abertura_caso"`
	DescricaoCaso          string     `json:"descricao_caso"`
	StatusCaso             StatusCaso `json:"status_caso"`
	NomeCompletoVitimaCaso string     `json:"nome_completo_vitima_caso"`
	DataNacVitimaCaso      *time.Time `json:"data_nac_vitima_caso"`
	SexoVitimaCaso         string     `json:"sexo_vitima_caso"`
	ObservacaoVitimaCaso   string     `json:"observacao_vitima_caso"`
}

// StatusCaso é um tipo string para o andamento do caso.
type StatusCaso string

const (
	StatusEmAndamento StatusCaso = "Em andamento"
	StatusArquivado   StatusCaso = "Arquivado"
	StatusFinalizado  StatusCaso = "Finalizado"
)

// Valido informa se o status pertence ao conjunto permitido.
func (s StatusCaso) Valido() bool {
	switch s {
	case StatusEmAndamento, StatusArquivado, StatusFinalizado:
		return true
	}
	return false
}

// SexoVitimaValido valida o sexo da vítima: M, F ou vazio.
func SexoVitimaValido(sexo string) bool {
	return sexo == "M" || sexo == "F" || sexo == ""
}

// CasoComEvidencias é o payload da criação composta: um caso e suas
// evidências, persistidos como uma única unidade atômica.
type CasoComEvidencias struct {
	Caso       Caso        `json:"caso"`
	Evidencias []Evidencia `json:"evidencias"`
}
