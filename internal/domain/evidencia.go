package domain

import "time"

// Endereco agrupa os campos de localização de uma evidência.
// Todos os campos são opcionais e valem string vazia por padrão.
type Endereco struct {
	Rua    string `json:"rua"`
	Bairro string `json:"bairro"`
	CEP    string `json:"cep"`
	Numero string `json:"numero"`
	Estado string `json:"estado"`
	Cidade string `json:"cidade"`
}

// Evidencia representa uma evidência vinculada a exatamente um caso.
// Os três conteúdos (radiografia, odontograma, documentos) são payloads
// Base64 independentes, cada um com a sua observação em texto livre.
type Evidencia struct {
	ID                             string    `json:"id"`
	IDCaso                         int64     `json:"id_caso"`
	Endereco                       Endereco  `json:"endereco"`
	DataCriacaoEvidencia           time.Time `json:"data_criacao_evidencia"`
	RadiografiaEvidencia           string    `json:"radiografia_evidencia"`
	RadiografiaObservacaoEvidencia string    `json:"radiografia_observacao_evidencia"`
	OdontogramaEvidencia           string    `json:"odontograma_evidencia"`
	OdontogramaObservacaoEvidencia string    `json:"odontograma_observacao_evidencia"`
	DocumentosEvidencia            string    `json:"documentos_evidencia"`
	DocumentosObservacaoEvidencia  string    `json:"documentos_observacao_evidencia"`
}

// AtualizacaoEndereco é o patch parcial dos campos de localização.
// Campos nil não foram enviados e preservam o valor armazenado.
type AtualizacaoEndereco struct {
	Rua    *string `json:"rua"`
	Bairro *string `json:"bairro"`
	CEP    *string `json:"cep"`
	Numero *string `json:"numero"`
	Estado *string `json:"estado"`
	Cidade *string `json:"cidade"`
}

// AtualizacaoEvidencia é o payload de atualização parcial de uma evidência:
// somente os campos presentes no JSON são alterados, os demais permanecem.
// O vínculo com o caso e a data de criação nunca mudam por esta via.
type AtualizacaoEvidencia struct {
	Endereco                       *AtualizacaoEndereco `json:"endereco"`
	RadiografiaEvidencia           *string              `json:"radiografia_evidencia"`
	RadiografiaObservacaoEvidencia *string              `json:"radiografia_observacao_evidencia"`
	OdontogramaEvidencia           *string              `json:"odontograma_evidencia"`
	OdontogramaObservacaoEvidencia *string              `json:"odontograma_observacao_evidencia"`
	DocumentosEvidencia            *string              `json:"documentos_evidencia"`
	DocumentosObservacaoEvidencia  *string              `json:"documentos_observacao_evidencia"`
}

// ConfirmacaoExclusao é o literal exigido no corpo da exclusão em massa de
// evidências. Qualquer outro valor aborta a operação sem apagar nada.
const ConfirmacaoExclusao = "CONFIRMAR_EXCLUSAO"

// EvidenciasDoCaso agrupa as evidências de um caso para apresentação.
type EvidenciasDoCaso struct {
	IDCaso     int64       `json:"id_caso"`
	Contagem   int         `json:"contagem"`
	Evidencias []Evidencia `json:"evidencias"`
}
