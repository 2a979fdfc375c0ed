// Package storage guarda los aditivos PDF: en disco local (por defecto) o en un bucket MinIO/S3.
package storage

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/jhoicas/trek-api/internal/application/contract"
	"github.com/jhoicas/trek-api/internal/domain"
	"github.com/jhoicas/trek-api/pkg/config"
)

// ErrInvalidKey la clave está vacía o intenta salir del directorio raíz.
var ErrInvalidKey = errors.New("storage: clave inválida")

// ErrNotFound el documento no existe. Envuelve domain.ErrNotFound para que el handler responda 404.
var ErrNotFound = fmt.Errorf("storage: documento no encontrado: %w", domain.ErrNotFound)

// New construye el store según STORAGE_DRIVER.
func New(cfg config.StorageConfig) (contract.Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "local":
		return NewLocalStore(cfg.LocalDir)
	case "minio":
		return NewMinIOStore(cfg)
	}
	return nil, fmt.Errorf("storage: driver desconocido %q", cfg.Driver)
}

// cleanKey normaliza la clave a una ruta relativa con '/'.
func cleanKey(key string) (string, error) {
	k := strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if k == "" || strings.HasPrefix(k, "/") {
		return "", ErrInvalidKey
	}
	k = path.Clean(k)
	if k == "." || k == ".." || strings.HasPrefix(k, "../") {
		return "", ErrInvalidKey
	}
	return k, nil
}
