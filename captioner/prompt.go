package captioner

// captionPrompt 是随每个请求发送的固定提示词，不可配置。
// 引导模型产出 2-4 句、覆盖主题 / 视觉元素 / 上下文 / 可见文本 / 用途的描述。
const captionPrompt = `Analyze this image and provide a concise, descriptive caption.

Focus on:
- Main subject or content
- Key visual elements
- Context (presentation slide, document, video frame, etc.)
- Any text visible in the image
- Overall purpose or message

Provide a single paragraph caption (2-4 sentences) that would help someone understand the content without seeing the image.`
