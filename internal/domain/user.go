package domain

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NewUser é o corpo de POST /users
type NewUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// RegistrationForm mantém os campos do cadastro entre tentativas: em caso de
// falha os campos continuam preenchidos, em caso de sucesso são limpos.
type RegistrationForm struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"-"`
	Success  string `json:"success,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (f *RegistrationForm) Clear() {
	f.Username = ""
	f.Email = ""
	f.Password = ""
}
