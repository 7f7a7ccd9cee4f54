package classroom

// MarkNotificationAsRead flags one of the signed-in user's notifications as read.
func (svc *Service) MarkNotificationAsRead(id string) error {
	return svc.write(func(t *tx) error {
		me, err := authorize(&t.state)
		if err != nil {
			return err
		}
		i, ok := indexOf(t.notifications, func(n Notification) bool { return n.ID == id })
		if !ok {
			return ErrNotFound
		}
		n := t.notifications[i]
		if n.UserID != me.ID {
			return ErrPermissionDenied
		}
		if n.IsRead {
			return nil
		}
		n.IsRead = true
		t.notifications = replaceAt(t.notifications, i, n)
		t.touch(KeyNotifications)
		return nil
	})
}

func (svc *Service) MarkAllNotificationsAsRead() error {
	return svc.write(func(t *tx) error {
		me, err := authorize(&t.state)
		if err != nil {
			return err
		}
		var changed bool
		ns := make([]Notification, len(t.notifications))
		for i, n := range t.notifications {
			if n.UserID == me.ID && !n.IsRead {
				n.IsRead = true
				changed = true
			}
			ns[i] = n
		}
		if changed {
			t.notifications = ns
			t.touch(KeyNotifications)
		}
		return nil
	})
}
