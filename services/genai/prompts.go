package genai

const (
	courseDescriptionPrompt = `Generate a compelling and concise course description for a course titled %q. ` +
		`The description should be suitable for a learning management system. ` +
		`It should be engaging for potential students and highlight the key learning outcomes. Make it about 2-3 sentences long.`

	assignmentFeedbackPrompt = `You are a helpful teaching assistant providing feedback on a student's assignment.
Assignment Title: %q
Student's Submission: %q

Provide constructive and encouraging feedback. Start with something positive, then suggest one area for improvement. ` +
		`Keep the feedback concise and helpful. Do not assign a grade.`

	quizQuestionsPrompt = `Based on the following course material, generate 3-5 quiz questions. ` +
		`The questions should be a mix of multiple-choice and true/false. For multiple-choice questions, provide 4 options.

Course Material:
---
%s
---

Provide the output in the specified JSON format.`

	videoTranscriptPrompt = `Generate a plausible, detailed text transcript for a fictional educational video titled %q. ` +
		`The transcript should be structured with paragraphs and cover potential key topics related to the title. ` +
		`The transcript should be at least 300 words long to provide enough content for an AI assistant to answer questions. ` +
		`Do not add any introductory text like "Here is the transcript". Just start with the transcript content itself.`

	videoQuestionPrompt = `You are an AI assistant for a student watching an educational video. Here is the transcript of the video:
---
%s
---
The student asked the following question: %q

Answer the student's question based *only* on the provided transcript. ` +
		`At the beginning of your answer, provide a plausible timestamp in the format [MM:SS] where in the video the relevant information might be found. ` +
		`For example: "[02:45] The mitochondria is the powerhouse of the cell...". ` +
		`If you cannot find an answer in the transcript, state that clearly. Do not make up information not present in the transcript.`
)
