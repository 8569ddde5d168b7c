package db

import (
	"database/sql"
	"log"

	"MedStore/internal/models"
)

// Сообщения хранятся канонично: user_id - всегда клиент, admin_id - всегда
// администратор, автор помечен флагом is_admin. Канонический порядок
// гарантирует API-слой, поэтому запросам чтения не нужны условия с
// перестановкой пары (user_id, admin_id).

// AddChatMessage добавляет новое сообщение в переписку клиента с
// администратором. Временная метка назначается сервером БД.
func AddChatMessage(userID, adminID int64, message string, isAdmin bool) (models.ChatMessage, error) {
	var msg models.ChatMessage
	err := DB.QueryRow(`
        INSERT INTO chat_messages (user_id, admin_id, message, is_admin, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NOW(), NOW())
        RETURNING id, user_id, admin_id, message, is_admin, created_at, updated_at`,
		userID, adminID, message, isAdmin).Scan(
		&msg.ID, &msg.UserID, &msg.AdminID, &msg.Message, &msg.IsAdmin, &msg.CreatedAt, &msg.UpdatedAt)
	if err != nil {
		log.Printf("AddChatMessage: ошибка добавления сообщения (user_id %d, admin_id %d): %v", userID, adminID, err)
		return msg, err
	}
	log.Printf("Сообщение #%d в переписке (клиент %d, админ %d) добавлено.", msg.ID, userID, adminID)
	return msg, nil
}

// GetChatMessageByID извлекает сообщение по id.
// Возвращает sql.ErrNoRows, если сообщение не найдено.
func GetChatMessageByID(id int64) (models.ChatMessage, error) {
	var msg models.ChatMessage
	err := DB.QueryRow(`
        SELECT id, user_id, admin_id, message, is_admin, created_at, updated_at
        FROM chat_messages WHERE id = $1`, id).Scan(
		&msg.ID, &msg.UserID, &msg.AdminID, &msg.Message, &msg.IsAdmin, &msg.CreatedAt, &msg.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return msg, err
		}
		log.Printf("GetChatMessageByID: ошибка получения сообщения %d: %v", id, err)
		return msg, err
	}
	return msg, nil
}

// UpdateChatMessageText заменяет текст сообщения. created_at не меняется;
// обновляется только updated_at.
func UpdateChatMessageText(id int64, message string) (models.ChatMessage, error) {
	var msg models.ChatMessage
	err := DB.QueryRow(`
        UPDATE chat_messages SET message = $1, updated_at = NOW()
        WHERE id = $2
        RETURNING id, user_id, admin_id, message, is_admin, created_at, updated_at`,
		message, id).Scan(
		&msg.ID, &msg.UserID, &msg.AdminID, &msg.Message, &msg.IsAdmin, &msg.CreatedAt, &msg.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return msg, err
		}
		log.Printf("UpdateChatMessageText: ошибка обновления сообщения %d: %v", id, err)
		return msg, err
	}
	return msg, nil
}

// DeleteChatMessage безвозвратно удаляет сообщение.
// Возвращает sql.ErrNoRows, если сообщения уже нет (повторное удаление
// не должно выглядеть успехом).
func DeleteChatMessage(id int64) error {
	res, err := DB.Exec(`DELETE FROM chat_messages WHERE id = $1`, id)
	if err != nil {
		log.Printf("DeleteChatMessage: ошибка удаления сообщения %d: %v", id, err)
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		log.Printf("DeleteChatMessage: ошибка получения числа удаленных строк: %v", err)
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	log.Printf("Сообщение #%d удалено.", id)
	return nil
}

// GetMessagesBetween возвращает страницу переписки пары (клиент, админ).
// Окно страницы выбирается с нового конца истории (страница 1 - самые
// свежие сообщения), внутри страницы сообщения идут от старых к новым,
// как их отображает клиент.
func GetMessagesBetween(userID, adminID int64, page, pageSize int) ([]models.ChatMessage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	rows, err := DB.Query(`
        SELECT id, user_id, admin_id, message, is_admin, created_at, updated_at
        FROM chat_messages
        WHERE user_id = $1 AND admin_id = $2
        ORDER BY created_at DESC, id DESC
        LIMIT $3 OFFSET $4`, userID, adminID, pageSize, offset)
	if err != nil {
		log.Printf("GetMessagesBetween: ошибка получения сообщений пары (%d, %d): %v", userID, adminID, err)
		return nil, err
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var msg models.ChatMessage
		errScan := rows.Scan(&msg.ID, &msg.UserID, &msg.AdminID, &msg.Message, &msg.IsAdmin, &msg.CreatedAt, &msg.UpdatedAt)
		if errScan != nil {
			log.Printf("GetMessagesBetween: ошибка сканирования сообщения: %v", errScan)
			continue
		}
		messages = append(messages, msg)
	}
	if err = rows.Err(); err != nil {
		log.Printf("GetMessagesBetween: ошибка после итерации по строкам: %v", err)
		return nil, err
	}

	// Запрос шел от новых к старым - разворачиваем для выдачи по возрастанию.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// GetLatestMessageID возвращает id самого свежего сообщения пары или 0,
// если сообщений нет. Используется long-poll ожиданием новых сообщений.
func GetLatestMessageID(userID, adminID int64) (int64, error) {
	var id int64
	err := DB.QueryRow(`
        SELECT COALESCE(MAX(id), 0) FROM chat_messages
        WHERE user_id = $1 AND admin_id = $2`, userID, adminID).Scan(&id)
	if err != nil {
		log.Printf("GetLatestMessageID: ошибка для пары (%d, %d): %v", userID, adminID, err)
		return 0, err
	}
	return id, nil
}

// GetConversations строит список бесед администратора: по одной записи на
// каждого клиента с историей переписки, с последним сообщением каждой пары.
// Список отсортирован по времени последнего сообщения (свежие сверху) -
// это явный контракт выдачи, а не случайный порядок итерации.
// Клиенты, чья учетная запись удалена, в список не попадают (JOIN).
func GetConversations(adminID int64) ([]models.Conversation, error) {
	rows, err := DB.Query(`
        SELECT t.user_id, t.user_name, t.message, t.is_admin, t.created_at
        FROM (
            SELECT DISTINCT ON (cm.user_id)
                   cm.user_id, u.name AS user_name, cm.message, cm.is_admin, cm.created_at
            FROM chat_messages cm
            JOIN users u ON u.id = cm.user_id
            WHERE cm.admin_id = $1 AND cm.user_id <> $1
            ORDER BY cm.user_id, cm.created_at DESC, cm.id DESC
        ) t
        ORDER BY t.created_at DESC`, adminID)
	if err != nil {
		log.Printf("GetConversations: ошибка получения списка бесед администратора %d: %v", adminID, err)
		return nil, err
	}
	defer rows.Close()

	var conversations []models.Conversation
	for rows.Next() {
		var c models.Conversation
		errScan := rows.Scan(&c.UserID, &c.UserName, &c.LastMessage, &c.LastMessageIsAdmin, &c.LastMessageTime)
		if errScan != nil {
			log.Printf("GetConversations: ошибка сканирования беседы: %v", errScan)
			continue
		}
		conversations = append(conversations, c)
	}
	if err = rows.Err(); err != nil {
		log.Printf("GetConversations: ошибка после итерации по строкам: %v", err)
		return nil, err
	}
	return conversations, nil
}
