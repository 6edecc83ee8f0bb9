package domain

import "errors"

// Виды сбоев, различимые через errors.Is. Потоки диалога и планировщик
// обязаны отличать «пост не сгенерирован» от «сгенерирован, но не доставлен».
var (
	// ErrUnauthorized — чат не входит в список разрешённых операторов.
	ErrUnauthorized = errors.New("доступ запрещён")
	// ErrNotFound — канал или тема отсутствует в хранилище.
	ErrNotFound = errors.New("запись не найдена")
	// ErrGeneration — провайдер генерации вернул ошибку или пустой текст.
	ErrGeneration = errors.New("генерация не удалась")
	// ErrPublish — шлюз отклонил публикацию в канал.
	ErrPublish = errors.New("публикация не удалась")
	// ErrStorage — сбой обращения к хранилищу.
	ErrStorage = errors.New("ошибка хранилища")
)
