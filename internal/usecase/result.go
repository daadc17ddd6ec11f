package usecase

// Result é o envelope uniforme devolvido à camada de ações/HTTP.
type Result[T any] struct {
	Success bool              `json:"success"`
	Data    *T                `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Code    string            `json:"code,omitempty"`
	Fields  []ValidationError `json:"fields,omitempty"`
}

func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: &data}
}

func Fail[T any](err error) Result[T] {
	be := AsBillingError(err)
	return Result[T]{Success: false, Error: be.Message, Code: be.Code, Fields: be.Fields}
}

// Wrap converte o par (valor, erro) de um caso de uso em Result.
func Wrap[T any](data T, err error) Result[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Ok(data)
}
