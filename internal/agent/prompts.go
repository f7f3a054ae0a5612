package agent

import (
	"fmt"
	"strings"
)

// Section headers double as routing markers for scripted oracles in tests.
const (
	markerSynthesize = "USER REQUEST:"
	markerSafety     = "Analyze this Linux command for safety:"
	markerGUI        = "to determine if it launches a GUI application"
	markerAnalyze    = "COMMAND EXECUTED:"
	markerSummarize  = "Analyze these recent command execution logs"
)

func synthesizePrompt(req PlanRequest) string {
	history := req.History
	if strings.TrimSpace(history) == "" {
		history = "No recent commands"
	}
	previous := "None - this is the first attempt"
	if len(req.Failures) > 0 {
		previous = "\n- " + strings.Join(req.Failures, "\n- ")
	}

	return fmt.Sprintf(`You are Lily, an expert Linux system administrator and problem solver.

%s "%s"

SYSTEM CONTEXT:
%s

RECENT COMMAND HISTORY:
%s

PREVIOUS ATTEMPTS: %s

Your job:
1. Understand what the user wants to accomplish
2. Consider the system environment and context
3. If previous attempts failed, learn from those failures
4. Provide a working solution that fits the user's system

IMPORTANT RULES:
- Provide ONLY raw commands without markdown formatting
- Consider the actual desktop environment detected
- Be adaptive - don't assume specific software is installed
- Learn from previous failures to try different approaches
- Focus on the end goal, not specific methods

For GUI applications:
- If still running after launch, this is SUCCESS
- Minimal stdout/stderr is normal for GUI apps

For CLI applications:
- Should complete and exit normally
- Exit codes are reliable indicators

CRITICAL: Keep commands simple! For GUI apps, just run the app directly:
- Good: "cheese" or "guvcview"
- Bad: "sudo apt update && sudo apt install -y cheese && cheese"

Return format:
Explanation: (Brief explanation of your approach)
Command: (Single working command - keep it simple!)

If software needs installation, suggest that as a separate step first.`,
		markerSynthesize, req.Goal, req.System.String(), history, previous)
}

func safetyPrompt(command string) string {
	return fmt.Sprintf(`%s "%s"

Is this command safe to execute? Consider:
- Destructive operations (rm -rf, format, etc.)
- System modifications that could break things
- Security risks

Respond with only: SAFE or UNSAFE`, markerSafety, command)
}

func guiPrompt(command string) string {
	return fmt.Sprintf(`Analyze this Linux command %s:

COMMAND: "%s"

Consider:
- Does this command typically launch a graphical user interface?
- Would this application have windows, buttons, visual interface?
- Is this a desktop application vs command-line tool?

Examples of GUI apps: web browsers, media players, image viewers, text editors with GUI, file managers, camera apps, games
Examples of CLI apps: grep, ls, cat, apt, systemctl, curl, wget, ssh, vim (terminal version)

Some apps can be both (like vlc can be GUI or CLI depending on parameters).

Respond with only: GUI or CLI`, markerGUI, command)
}

func analyzePrompt(req AnalysisRequest) string {
	exitCode := "Unknown"
	if req.ExitCode != nil {
		exitCode = fmt.Sprintf("%d", *req.ExitCode)
	}
	isGUI := "False"
	if req.IsGUI {
		isGUI = "True"
	}

	return fmt.Sprintf(`You are Lily, an expert system administrator analyzing command execution results.

%s "%s"
OUTPUT RECEIVED: "%s"
EXIT CODE: %s
IS GUI APPLICATION: %s

IMPORTANT CONTEXT FOR GUI APPLICATIONS:
- GUI applications are SUPPOSED to keep running
- If a GUI app is still running (no exit code or exit code 0), this is SUCCESS
- GUI apps often produce minimal or no stdout/stderr when successful
- Only consider GUI apps failed if they exit immediately with error code

1. EXECUTION STATUS: Did the command execute successfully?
2. WHAT HAPPENED: What actually occurred during execution?
3. RESULTS: What was accomplished or what failed?
4. ISSUES: Any problems, warnings, or errors detected?
5. NEXT STEPS: What should happen next (if anything)?

Provide your analysis in this format:
STATUS: [SUCCESS/PARTIAL/FAILED]
SUMMARY: [Brief summary of what happened]
DETAILS: [Detailed explanation of the execution]
ISSUES: [Any problems found, or "None detected"]
RECOMMENDATION: [What to do next, or "Task completed"]`,
		markerAnalyze, req.Command, req.Transcript, exitCode, isGUI)
}

func summarizePrompt(recordsJSON string) string {
	return fmt.Sprintf(`%s and provide a brief summary:

%s

Focus on:
- How many commands were executed recently
- Success vs failure rate
- Common issues encountered
- Overall system health

Keep response under 100 words.`, markerSummarize, recordsJSON)
}
