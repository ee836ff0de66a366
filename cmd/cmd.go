// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func yesFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Answer yes to confirmation prompts",
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output raw JSON",
	}
}

func dateFlag() cli.Flag {
	return &cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "Target date, YYYY-MM-DD (default: today, UTC)"}
}

func idArg(name string) []cli.Argument {
	return []cli.Argument{&cli.StringArg{Name: name}}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration, database and session",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write the default configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Create the local database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "session",
				Usage: "Import a logged-in browser session from a copied cURL command",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command copied from the browser's network tab",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "File containing the cURL command",
					},
				},
				Action: r.SetupSession,
			},
		},
	}
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Log in, log out and register",
		Before: r.at("/login"),
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password (prompted when omitted)"},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Log out and forget the local session and current room",
				Action: r.AuthLogout,
			},
			{
				Name:  "register",
				Usage: "Create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Display name"},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password (prompted when omitted)"},
					&cli.IntFlag{Name: "age", Usage: "Age"},
					&cli.StringSliceFlag{Name: "field", Usage: "Study field (repeatable)"},
					&cli.StringFlag{Name: "bio", Usage: "Short bio"},
					&cli.StringFlag{Name: "image", Usage: "Profile image file"},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "status",
				Usage:  "Show who is logged in",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.AuthStatus,
			},
			{
				Name:   "refresh",
				Usage:  "Reload the profile from the server",
				Action: r.AuthRefresh,
			},
		},
	}
}

func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "profile",
		Usage:  "View and edit the account profile",
		Before: r.at("/profile"),
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the profile",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.ProfileShow,
			},
			{
				Name:  "update",
				Usage: "Update profile fields",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Usage: "Display name"},
					&cli.StringFlag{Name: "bio", Usage: "Short bio"},
					&cli.StringSliceFlag{Name: "field", Usage: "Study field (repeatable, replaces the list)"},
					&cli.StringFlag{Name: "image-url", Usage: "Profile image URL"},
					&cli.IntFlag{Name: "age", Usage: "Age"},
					&cli.BoolFlag{Name: "notifications", Usage: "Enable notifications"},
				},
				Action: r.ProfileUpdate,
			},
			{
				Name:      "email",
				Usage:     "Change the account email",
				Arguments: idArg("email"),
				Action:    r.ProfileEmail,
			},
			{
				Name:  "password",
				Usage: "Change the account password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "current", Usage: "Current password (prompted when omitted)"},
					&cli.StringFlag{Name: "new", Usage: "New password (prompted when omitted)"},
				},
				Action: r.ProfilePassword,
			},
			{
				Name:  "delete",
				Usage: "Delete the account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "password", Usage: "Account password (prompted when omitted)"},
					yesFlag(),
				},
				Action: r.ProfileDelete,
			},
		},
	}
}

func groupsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "groups",
		Usage:  "Study group operations",
		Before: r.at("/groups"),
		Commands: []*cli.Command{
			{Name: "list", Usage: "List all groups", Flags: []cli.Flag{jsonFlag()}, Action: r.GroupsList},
			{Name: "mine", Usage: "List groups you lead", Flags: []cli.Flag{jsonFlag()}, Action: r.GroupsMine},
			{Name: "show", Usage: "Show a group", Arguments: idArg("id"), Flags: []cli.Flag{jsonFlag()}, Action: r.GroupsShow},
			{
				Name:  "create",
				Usage: "Create a group led by you",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Group name", Required: true},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Group description"},
				},
				Action: r.GroupsCreate,
			},
			{Name: "delete", Usage: "Delete a group", Arguments: idArg("id"), Flags: []cli.Flag{yesFlag()}, Action: r.GroupsDelete},
			{Name: "members", Usage: "List group members", Arguments: idArg("id"), Action: r.GroupsMembers},
			{
				Name:  "add-member",
				Usage: "Add a member to a group",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "member"},
				},
				Action: r.GroupsAddMember,
			},
			{
				Name:  "remove-member",
				Usage: "Remove a member from a group",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "member"},
				},
				Action: r.GroupsRemoveMember,
			},
		},
	}
}

func openCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "open",
		Usage:  "Open study rooms anyone can join",
		Before: r.at("/open-study"),
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List open rooms",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "field", Aliases: []string{"f"}, Usage: "Filter by study field"},
					&cli.IntFlag{Name: "page", Usage: "Zero-based page number"},
					jsonFlag(),
				},
				Action: r.OpenList,
			},
			{Name: "show", Usage: "Show an open room", Arguments: idArg("id"), Flags: []cli.Flag{jsonFlag()}, Action: r.OpenShow},
			{
				Name:  "create",
				Usage: "Create an open room and enter it",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Room title (1-30 characters)", Required: true},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Room description"},
					&cli.IntFlag{Name: "max", Usage: "Maximum participants (2-10)", Value: 4},
					&cli.StringFlag{Name: "field", Aliases: []string{"f"}, Usage: "Study field", Required: true},
				},
				Action: r.OpenCreate,
			},
			{Name: "join", Usage: "Join an open room", Arguments: idArg("id"), Flags: []cli.Flag{yesFlag()}, Action: r.OpenJoin},
			{Name: "leave", Usage: "Leave an open room (default: the current one)", Arguments: idArg("id"), Action: r.OpenLeave},
			{Name: "delete", Usage: "Delete an open room you created", Arguments: idArg("id"), Flags: []cli.Flag{yesFlag()}, Action: r.OpenDelete},
			{Name: "current", Usage: "Show the room you are in", Flags: []cli.Flag{jsonFlag()}, Action: r.OpenCurrent},
		},
	}
}

func roomsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "rooms",
		Usage:  "Group study rooms",
		Before: r.at("/study-rooms"),
		Commands: []*cli.Command{
			{Name: "list", Usage: "List group study rooms", Flags: []cli.Flag{jsonFlag()}, Action: r.RoomsList},
			{Name: "group", Usage: "List the study rooms of a group", Arguments: idArg("group"), Flags: []cli.Flag{jsonFlag()}, Action: r.RoomsGroup},
			{Name: "show", Usage: "Show a study room", Arguments: idArg("id"), Flags: []cli.Flag{jsonFlag()}, Action: r.RoomsShow},
			{
				Name:  "create",
				Usage: "Create a study room in a group",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "group", Aliases: []string{"g"}, Usage: "Group id", Required: true},
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Room name", Required: true},
					&cli.StringFlag{Name: "field", Aliases: []string{"f"}, Usage: "Study field", Required: true},
					&cli.IntFlag{Name: "hours", Usage: "Planned study hours", Value: 2},
					&cli.IntFlag{Name: "max", Usage: "Maximum members (2-10)", Value: 4},
				},
				Action: r.RoomsCreate,
			},
			{Name: "join", Usage: "Join a study room and start its timer", Arguments: idArg("id"), Flags: []cli.Flag{yesFlag()}, Action: r.RoomsJoin},
			{Name: "leave", Usage: "Leave a study room (default: the current one)", Arguments: idArg("id"), Action: r.RoomsLeave},
			{Name: "end", Usage: "End a study room for everyone", Arguments: idArg("id"), Action: r.RoomsEnd},
			{Name: "delete", Usage: "Delete a study room", Arguments: idArg("id"), Flags: []cli.Flag{yesFlag()}, Action: r.RoomsDelete},
			{Name: "participants", Usage: "List participants with their timers", Arguments: idArg("id"), Flags: []cli.Flag{jsonFlag()}, Action: r.RoomsParticipants},
		},
	}
}

func checklistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "checklist",
		Aliases: []string{"todo"},
		Usage:   "Daily study checklist",
		Before:  r.at("/checklist"),
		Commands: []*cli.Command{
			{Name: "list", Usage: "List the items of a day", Flags: []cli.Flag{dateFlag(), jsonFlag()}, Action: r.ChecklistList},
			{Name: "add", Usage: "Add an item", Arguments: idArg("content"), Flags: []cli.Flag{dateFlag()}, Action: r.ChecklistAdd},
			{
				Name:  "edit",
				Usage: "Change the text of an item",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "content"},
				},
				Action: r.ChecklistEdit,
			},
			{Name: "toggle", Usage: "Flip the completed state of an item", Arguments: idArg("id"), Action: r.ChecklistToggle},
			{
				Name:      "delete",
				Usage:     "Delete one or more items",
				ArgsUsage: "<id>...",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "workers", Usage: "Concurrent deletes", Value: 3},
				},
				Action: r.ChecklistDelete,
			},
			{
				Name:  "month",
				Usage: "Show a month calendar marking days with items",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "year", Usage: "Year (default: current)"},
					&cli.IntFlag{Name: "month", Usage: "Month 1-12 (default: current)"},
				},
				Action: r.ChecklistMonth,
			},
			{
				Name:  "export",
				Usage: "Export the items of a day",
				Flags: []cli.Flag{
					dateFlag(),
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "csv, md or json", Value: "md"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file path"},
				},
				Action: r.ChecklistExport,
			},
		},
	}
}

func chatCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "chat",
		Usage:  "Room chat history",
		Before: r.at("/chat"),
		Commands: []*cli.Command{
			{
				Name:  "history",
				Usage: "Show the chat history of a room",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "kind"},
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Usage: "Zero-based page number"},
					&cli.IntFlag{Name: "size", Usage: "Messages per page", Value: 50},
					jsonFlag(),
				},
				Action: r.ChatHistory,
			},
			{Name: "upload", Usage: "Upload an image for chat", Arguments: idArg("path"), Action: r.ChatUpload},
		},
	}
}

func roomCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "room",
		Usage:  "Interactive room view",
		Before: r.at("/study-room"),
		Commands: []*cli.Command{
			{
				Name:  "view",
				Usage: "Join a room and follow its participants and timer; leaves on exit",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "kind"},
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "log-file", Usage: "Log file while the view owns the terminal", Value: "./tmp/studyx-tui.log"},
				},
				Action: r.RoomView,
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "api",
		Usage:  "Direct calls to the study backend",
		Before: r.at("/api"),
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Direct GET, prints raw JSON",
				Arguments: idArg("path"),
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:      "post",
				Usage:     "Direct POST with JSON body",
				Arguments: idArg("path"),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}
