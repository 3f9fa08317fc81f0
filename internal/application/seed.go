package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/sitecms/internal/domain/model"
	"github.com/ericfisherdev/sitecms/internal/domain/port/driven"
)

// AdminSeed holds the account created on an empty user store.
type AdminSeed struct {
	Username string
	Password string
	Name     string
	Email    string
}

// SeedDefaults populates an empty section store with the default site
// content and an empty user store with the initial admin account. It runs at
// startup after the data migration, so a migrated deployment is never
// reseeded. Stores that already hold any data are left untouched.
func SeedDefaults(ctx context.Context, sections driven.SectionStore, users driven.UserStore, admin AdminSeed, logger *slog.Logger) error {
	data, err := sections.Load(ctx)
	if err != nil {
		return fmt.Errorf("seed: load sections: %w", err)
	}
	if len(data) == 0 {
		for _, section := range defaultSections() {
			if err := sections.Update(ctx, section.key, section.value); err != nil {
				return fmt.Errorf("seed section %q: %w", section.key, err)
			}
		}
		logger.Info("seeded default site content")
	}

	existing, err := users.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("seed: list users: %w", err)
	}
	if len(existing) == 0 {
		hash, err := HashPassword(admin.Password)
		if err != nil {
			return err
		}
		if _, err := users.Create(ctx, model.User{
			Username:     admin.Username,
			PasswordHash: hash,
			Name:         admin.Name,
			Email:        admin.Email,
			Active:       true,
		}); err != nil {
			return fmt.Errorf("seed admin %q: %w", admin.Username, err)
		}
		logger.Info("seeded initial admin account", "username", admin.Username)
	}

	return nil
}

type seedSection struct {
	key   string
	value model.SectionData
}

// defaultSections is the initial site content for a fresh install, mirroring
// the structure the public pages expect. Slice, not map, so seeding order is
// stable.
func defaultSections() []seedSection {
	return []seedSection{
		{"logo", model.SectionData{
			"filename": "logo.png",
			"alt":      "CASS - Congá de Aruanda São Sebastião",
		}},
		{"menu", model.SectionData{
			"items": []any{
				map[string]any{"name": "Início", "url": "/", "active": true},
				map[string]any{"name": "Sobre", "url": "/sobre", "active": true},
				map[string]any{"name": "Atividades", "url": "/atividades", "active": true},
				map[string]any{"name": "Consultas", "url": "/consultas", "active": true},
				map[string]any{"name": "Contato", "url": "/contato", "active": true},
			},
		}},
		{"welcome", model.SectionData{
			"title":       "Bem-vindo ao CASS",
			"subtitle":    "Congá de Aruanda São Sebastião",
			"description": "Um espaço dedicado à preservação, estudo e difusão das tradições culturais e espirituais afro-brasileiras.",
		}},
		{"valores", model.SectionData{
			"title": "Nossos Valores",
			"items": []any{},
		}},
		{"agenda", model.SectionData{
			"title":  "Agenda",
			"events": []any{},
		}},
		{"videos", model.SectionData{
			"title": "Vídeos",
			"items": []any{},
		}},
		{"footer", model.SectionData{
			"name":        "CASS",
			"subtitle":    "Congá de Aruanda São Sebastião",
			"description": "Preservando e difundindo as tradições afro-brasileiras.",
			"email":       "contato@cass.org.br",
			"phone":       "",
			"address":     "",
			"hours":       "",
			"copyright":   "© 2025 CASS. Todos os direitos reservados.",
			"social_media": map[string]any{
				"whatsapp":  "",
				"instagram": "",
				"facebook":  "",
				"youtube":   "",
			},
		}},
		{"whatsapp", model.SectionData{
			"number":  "",
			"message": "Olá! Gostaria de agendar uma consulta.",
		}},
		{model.PagesKey, model.SectionData{
			"sobre": map[string]any{
				"title":    "Sobre o CASS",
				"subtitle": "Conheça nossa história e missão",
				"historia": map[string]any{"paragraphs": []any{}},
				"missao":   map[string]any{"intro": "", "items": []any{}},
				"valores":  map[string]any{"items": []any{}},
				"visao":    map[string]any{"content": ""},
			},
			"atividades": map[string]any{
				"title":    "Nossas Atividades",
				"subtitle": "Conheça o que oferecemos",
				"items":    []any{},
			},
			"consultas": map[string]any{
				"title":    "Consultas",
				"subtitle": "Agende sua consulta",
			},
			"contato": map[string]any{
				"title":    "Contato",
				"subtitle": "Entre em contato conosco",
			},
		}},
	}
}
