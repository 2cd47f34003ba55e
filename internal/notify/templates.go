package notify

import (
	"fmt"
	"html"

	"github.com/supportdesk/support-portal/internal/domain"
)

const signature = "Best regards,\nCustomer Service Team"

// WelcomeMessage greets a newly registered user.
func WelcomeMessage(user domain.User) Message {
	name := html.EscapeString(user.DisplayName)
	return Message{
		To:      user.Email,
		Subject: "Welcome to Customer Service Portal",
		Text: fmt.Sprintf("Hello %s,\n\nWelcome to Customer Service Portal! Your account has been successfully created.\n\n%s",
			user.DisplayName, signature),
		HTML: fmt.Sprintf("<h1>Welcome to Customer Service Portal!</h1>\n<p>Hello %s,</p>\n<p>Your account has been successfully created.</p>\n<p>Best regards,<br>Customer Service Team</p>",
			name),
	}
}

// ProfileUpdatedMessage confirms a profile change.
func ProfileUpdatedMessage(user domain.User) Message {
	name := html.EscapeString(user.DisplayName)
	return Message{
		To:      user.Email,
		Subject: "Profile Updated",
		Text: fmt.Sprintf("Hello %s,\n\nYour profile has been successfully updated.\n\n%s",
			user.DisplayName, signature),
		HTML: fmt.Sprintf("<h1>Profile Updated</h1>\n<p>Hello %s,</p>\n<p>Your profile has been successfully updated.</p>\n<p>Best regards,<br>Customer Service Team</p>",
			name),
	}
}
