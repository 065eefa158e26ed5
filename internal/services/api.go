package services

import (
	"github.com/zaqqye/surat_tugas_web/internal/config"
	"github.com/zaqqye/surat_tugas_web/internal/upstream"
)

// API owns the two base clients and hands out per-request service modules
// bound to the caller's token source.
type API struct {
	userBase *upstream.Client
	mailBase *upstream.Client
}

func NewAPI(cfg *config.Config) *API {
	return &API{
		userBase: upstream.New("user-service", cfg.UserServiceURL, cfg.RequestTimeout, cfg.UploadTimeout),
		mailBase: upstream.New("mail-service", cfg.MailServiceURL, cfg.RequestTimeout, cfg.UploadTimeout),
	}
}

func (a *API) Auth(ts upstream.TokenSource) *AuthService {
	return &AuthService{pub: a.userBase, auth: a.userBase.WithTokens(ts)}
}

func (a *API) Users(ts upstream.TokenSource) *UserService {
	return &UserService{client: a.userBase.WithTokens(ts)}
}

func (a *API) Nims(ts upstream.TokenSource) *NimService {
	return &NimService{client: a.userBase.WithTokens(ts)}
}

func (a *API) Surat(ts upstream.TokenSource) *SuratService {
	return &SuratService{client: a.mailBase.WithTokens(ts)}
}
