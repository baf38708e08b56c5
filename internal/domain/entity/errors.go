package entity

import "errors"

var (
	// ErrNoImage запрос пришёл без изображения
	ErrNoImage = errors.New("no image provided")
	// ErrImageDecode байты не удалось декодировать как изображение
	ErrImageDecode = errors.New("image decode failed")
	// ErrInference ошибка внутри модели детекции
	ErrInference = errors.New("inference failed")
	// ErrLabelMismatch метки модели не совпадают с ожидаемыми классами
	ErrLabelMismatch = errors.New("model labels mismatch")
)
